package cmd

import "testing"

func TestCompletion(t *testing.T) {
	c := Completion()

	for _, cmd := range Commands() {
		if _, ok := c.Sub[cmd.Name()]; !ok {
			t.Errorf("command %q cannot be completed", cmd.Name())
		}
	}
	for _, name := range []string{"add", "list", "edit", "remove", "contribute"} {
		if _, ok := c.Sub["goal"].Sub[name]; !ok {
			t.Errorf("goal %q cannot be completed", name)
		}
	}

	add := c.Sub["add"]
	for _, name := range []string{"t", "b", "p", "q", "c", "fetch"} {
		if _, ok := add.Flags[name]; !ok {
			t.Errorf("add flag -%s cannot be completed", name)
		}
	}
	if got := add.Flags["fetch"].Predict(""); len(got) != 0 {
		t.Error("add -fetch is a boolean flag and takes no value")
	}
	if got := c.Sub["list"].Flags["sort"].Predict(""); len(got) != 5 {
		t.Errorf("list -sort predicts %v, want the 5 sort keys", got)
	}
	if _, ok := c.Flags["store"]; !ok {
		t.Error("global flag -store cannot be completed")
	}
}
