package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/etnz/folio/webapi"
)

func TestUserMessage(t *testing.T) {
	stock := folio.NewStock("AAPL", folio.M(-1, "USD"), folio.Money{}, folio.Q(0))
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("AAPL: %w", folio.ErrDuplicateTicker), "already in your portfolio"},
		{folio.ErrStockNotFound, "no such position"},
		{folio.ErrGoalNotFound, "no such goal"},
		{fmt.Errorf("quote: %w", webapi.ErrRateLimited), "rate limit"},
		{webapi.ErrInvalidKey, "API key"},
		{webapi.ErrTimeout, "timed out"},
		{webapi.ErrUnavailable, "unavailable"},
		{store.ErrQuotaExceeded, "quota"},
		{store.ErrPermission, "Permission denied"},
		{context.Canceled, "Cancelled"},
		{stock.Validate(), "Invalid stock: "},
		{errors.New("something else"), "something else"},
	}
	for _, tt := range tests {
		got := UserMessage(tt.err)
		if !strings.Contains(got, tt.want) {
			t.Errorf("UserMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
