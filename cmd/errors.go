package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/etnz/folio/webapi"
	"github.com/google/subcommands"
)

// UserMessage turns an error into a one-line message for the user.
func UserMessage(err error) string {
	var verr *folio.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		msg := verr.Error()
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	case errors.Is(err, folio.ErrDuplicateTicker):
		return "This ticker is already in your portfolio, edit the existing position instead."
	case errors.Is(err, folio.ErrStockNotFound):
		return "There is no such position in your portfolio."
	case errors.Is(err, folio.ErrGoalNotFound):
		return "There is no such goal."
	case errors.Is(err, webapi.ErrRateLimited):
		return "The API rate limit is reached. Wait a minute and try again, or use mock data with -mock."
	case errors.Is(err, webapi.ErrInvalidKey):
		return "The API key is missing or invalid. Set it in the config file, the environment, or with -alphavantage-key and -news-key."
	case errors.Is(err, webapi.ErrTimeout):
		return "The request timed out. Check your connection and try again."
	case errors.Is(err, webapi.ErrNotFound):
		return "The symbol was not found."
	case errors.Is(err, webapi.ErrUnavailable):
		return "The service is unavailable, try again later."
	case errors.Is(err, store.ErrQuotaExceeded):
		return "The storage quota is exceeded. Export your data and remove old positions."
	case errors.Is(err, store.ErrPermission):
		return "Permission denied by the storage backend. Check your credentials."
	case errors.Is(err, store.ErrNotFound):
		return "The record was not found in the store."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The operation took too long."
	}
	return err.Error()
}

// fail prints the user message of 'err' and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	log.Printf("error: %v", err)
	fmt.Fprintln(stderr, "Error:", UserMessage(err))
	return subcommands.ExitFailure
}

// usage prints a usage error.
func usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
