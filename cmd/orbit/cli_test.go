package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/ops"
)

// setupTestExecutor creates an executor over a temporary database.
func setupTestExecutor(t *testing.T) *ops.Executor {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	return ops.NewExecutor(database,
		ops.WithLogger(zaptest.NewLogger(t)),
		ops.WithValidator(ops.NewLimitValidator(cfg)),
		ops.WithDefaultOrbit(cfg.Orbit()),
	)
}

// runApp runs the CLI with args and returns what it printed.
func runApp(t *testing.T, exec *ops.Executor, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(exec, config.DefaultConfig(), zaptest.NewLogger(t))
	var out bytes.Buffer
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"orbit"}, args...))
	return out.String(), err
}

func mustCreate(t *testing.T, exec *ops.Executor, name string) *contact.Contact {
	t.Helper()
	c, err := exec.CreateContact(context.Background(), ops.CreateContactInput{Name: name})
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return c
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, s)
	}
}

// TestParseDuration tests the parseDuration helper function.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{name: "valid days", input: "7d", expected: 7},
		{name: "zero days", input: "0d", expected: 0},
		{name: "large value", input: "365d", expected: 365},
		{name: "missing suffix", input: "7", expectError: true},
		{name: "wrong unit", input: "7h", expectError: true},
		{name: "negative", input: "-1d", expectError: true},
		{name: "not a number", input: "xd", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got %d", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestParseGlobal(t *testing.T) {
	tests := []struct {
		args        []string
		wantOverlay string
		wantFirst   string
	}{
		{[]string{"orbit"}, "", ""},
		{[]string{"orbit", "run", "@Tom"}, "", "run"},
		{[]string{"orbit", "--config", "work.json", "contact", "list"}, "work.json", "contact"},
		{[]string{"orbit", "--config=work.json", "tags"}, "work.json", "tags"},
		{[]string{"orbit", "-c", "x.json"}, "x.json", ""},
	}
	for _, tt := range tests {
		overlay, first := parseGlobal(tt.args)
		if overlay != tt.wantOverlay || first != tt.wantFirst {
			t.Errorf("parseGlobal(%v) = (%q, %q), want (%q, %q)",
				tt.args, overlay, first, tt.wantOverlay, tt.wantFirst)
		}
	}
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"orbit"}, false},
		{[]string{"orbit", "run", "@Tom !Coffee"}, true},
		{[]string{"orbit", "shell"}, true},
		{[]string{"orbit", "ui"}, true},
		{[]string{"orbit", "--config", "x.json", "timeline"}, true},
		{[]string{"orbit", "--help"}, true},
		{[]string{"orbit", "unknown"}, false},
	}
	for _, tt := range tests {
		if got := isCLIMode(tt.args); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	for _, arg := range []string{"--help", "-h", "--version", "-v", "help"} {
		if !isHelpOrVersion([]string{"orbit", arg}) {
			t.Errorf("isHelpOrVersion(%q) = false, want true", arg)
		}
	}
	if isHelpOrVersion([]string{"orbit", "run"}) {
		t.Error("isHelpOrVersion(run) = true, want false")
	}
}

// TestCLIRun tests the run command.
func TestCLIRun(t *testing.T) {
	exec := setupTestExecutor(t)
	tom := mustCreate(t, exec, "Tom")

	out, err := runApp(t, exec, "", "run", "@Tom", "!Coffee", "#work")
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	var output CommandOutput
	decodeJSON(t, out, &output)
	if !output.Success {
		t.Fatalf("expected success, got %q", output.Message)
	}
	if output.Message != "Logged Coffee with Tom" {
		t.Errorf("message = %q", output.Message)
	}
	if output.AffectedContact == nil || output.AffectedContact.ID != tom.ID {
		t.Errorf("affected_contact = %+v, want Tom", output.AffectedContact)
	}
	if !output.CanUndo {
		t.Error("expected can_undo after logging")
	}
}

func TestCLIRun_Failure(t *testing.T) {
	exec := setupTestExecutor(t)

	out, err := runApp(t, exec, "", "run", "@Nobody !Coffee")
	if err == nil {
		t.Fatal("expected error for unknown contact")
	}
	if !strings.Contains(err.Error(), "Nobody") {
		t.Errorf("error = %q, want mention of Nobody", err.Error())
	}

	var output map[string]any
	decodeJSON(t, out, &output)
	if output["success"] != false {
		t.Errorf("success = %v, want false", output["success"])
	}
}

func TestCLIRun_EmptyLine(t *testing.T) {
	exec := setupTestExecutor(t)

	_, err := runApp(t, exec, "", "run")
	if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("error = %v, want [INVALID_REQUEST]", err)
	}
}

func TestCLIRun_ForceConvert(t *testing.T) {
	exec := setupTestExecutor(t)
	tom := mustCreate(t, exec, "Tom")

	if _, err := runApp(t, exec, "", "run", "@Tom > city: Paris"); err != nil {
		t.Fatalf("set artifact: %v", err)
	}

	_, err := runApp(t, exec, "", "run", "@Tom > city + Rome")
	if err == nil || !strings.Contains(err.Error(), "--force-convert") {
		t.Fatalf("error = %v, want a hint to rerun with --force-convert", err)
	}

	if _, err := runApp(t, exec, "", "run", "--force-convert", "@Tom > city + Rome"); err != nil {
		t.Fatalf("forced append: %v", err)
	}

	a, err := db.GetArtifact(context.Background(), exec.DB(), tom.ID, "city")
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if got := a.Value.Items(); len(got) != 2 || got[0] != "Paris" || got[1] != "Rome" {
		t.Errorf("city = %v, want [Paris Rome]", got)
	}
}

// TestCLITokens tests the tokens command.
func TestCLITokens(t *testing.T) {
	exec := setupTestExecutor(t)

	out, err := runApp(t, exec, "", "tokens", "@Tom !Coffee #work")
	if err != nil {
		t.Fatalf("tokens command failed: %v", err)
	}

	var output TokensOutput
	decodeJSON(t, out, &output)
	if len(output.Tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(output.Tokens))
	}
	if output.Tokens[0].Value != "Tom" || output.Tokens[2].Value != "work" {
		t.Errorf("tokens = %+v", output.Tokens)
	}
}

// TestCLIContact tests the contact subcommands end to end.
func TestCLIContact(t *testing.T) {
	exec := setupTestExecutor(t)

	t.Run("add", func(t *testing.T) {
		out, err := runApp(t, exec, "", "contact", "add", "--orbit", "1", "--notes", "Met at *PyCon*", "Sarah", "Lee")
		if err != nil {
			t.Fatalf("contact add failed: %v", err)
		}
		var c contact.Contact
		decodeJSON(t, out, &c)
		if c.Name != "Sarah Lee" || c.TargetOrbit != 1 {
			t.Errorf("got %q orbit %d, want Sarah Lee orbit 1", c.Name, c.TargetOrbit)
		}
	})

	t.Run("add uses default orbit", func(t *testing.T) {
		out, err := runApp(t, exec, "", "contact", "add", "Tom")
		if err != nil {
			t.Fatalf("contact add failed: %v", err)
		}
		var c contact.Contact
		decodeJSON(t, out, &c)
		if c.TargetOrbit != 2 {
			t.Errorf("orbit = %d, want 2", c.TargetOrbit)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := runApp(t, exec, "", "contact", "add", "tom")
		if err == nil || !strings.HasPrefix(err.Error(), "[NAME_ALREADY_EXISTS]") {
			t.Errorf("error = %v, want [NAME_ALREADY_EXISTS]", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		if _, err := runApp(t, exec, "", "run", "@Sarah !Lunch #work"); err != nil {
			t.Fatalf("log: %v", err)
		}
		out, err := runApp(t, exec, "", "contact", "show", "sarah")
		if err != nil {
			t.Fatalf("contact show failed: %v", err)
		}
		var f ops.FetchContactOutput
		decodeJSON(t, out, &f)
		if f.Name != "Sarah Lee" || len(f.Recent) != 1 {
			t.Errorf("got %q with %d recent", f.Name, len(f.Recent))
		}
		if f.CadenceDays != 14 {
			t.Errorf("cadence_days = %d, want 14", f.CadenceDays)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := runApp(t, exec, "", "contact", "list")
		if err != nil {
			t.Fatalf("contact list failed: %v", err)
		}
		var l ops.ListContactsOutput
		decodeJSON(t, out, &l)
		if len(l.Items) != 2 || l.Items[0].Name != "Sarah Lee" || l.Items[1].Name != "Tom" {
			t.Errorf("items = %+v", l.Items)
		}

		out, err = runApp(t, exec, "", "contact", "list", "--orbit", "1")
		if err != nil {
			t.Fatalf("contact list --orbit failed: %v", err)
		}
		decodeJSON(t, out, &l)
		if len(l.Items) != 1 || l.Items[0].Name != "Sarah Lee" {
			t.Errorf("orbit 1 items = %+v", l.Items)
		}
	})

	t.Run("edit", func(t *testing.T) {
		out, err := runApp(t, exec, "", "contact", "edit", "--rename", "Thomas", "--orbit", "3", "Tom")
		if err != nil {
			t.Fatalf("contact edit failed: %v", err)
		}
		var c contact.Contact
		decodeJSON(t, out, &c)
		if c.Name != "Thomas" || c.TargetOrbit != 3 {
			t.Errorf("got %q orbit %d, want Thomas orbit 3", c.Name, c.TargetOrbit)
		}

		_, err = runApp(t, exec, "", "contact", "edit", "Thomas")
		if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("edit without fields: error = %v, want [INVALID_REQUEST]", err)
		}
	})

	t.Run("rm requires exact name", func(t *testing.T) {
		_, err := runApp(t, exec, "", "contact", "rm", "Thom")
		if err == nil || !strings.HasPrefix(err.Error(), "[NOT_FOUND]") {
			t.Errorf("error = %v, want [NOT_FOUND]", err)
		}

		out, err := runApp(t, exec, "", "contact", "rm", "Thomas")
		if err != nil {
			t.Fatalf("contact rm failed: %v", err)
		}
		var d ops.DeleteOutput
		decodeJSON(t, out, &d)
		if !d.Deleted || d.Name != "Thomas" {
			t.Errorf("delete output = %+v", d)
		}
	})
}

// TestCLIConstellation tests the constellation subcommands.
func TestCLIConstellation(t *testing.T) {
	exec := setupTestExecutor(t)
	mustCreate(t, exec, "Tom")
	mustCreate(t, exec, "Anna")

	if _, err := runApp(t, exec, "", "constellation", "add", "Family"); err != nil {
		t.Fatalf("constellation add failed: %v", err)
	}
	for _, name := range []string{"Tom", "Anna"} {
		if _, err := runApp(t, exec, "", "constellation", "join", "Family", name); err != nil {
			t.Fatalf("join %s failed: %v", name, err)
		}
	}

	out, err := runApp(t, exec, "", "run", "*Family !Dinner")
	if err != nil {
		t.Fatalf("fan-out failed: %v", err)
	}
	var res CommandOutput
	decodeJSON(t, out, &res)
	if !res.Success {
		t.Errorf("fan-out result = %q", res.Message)
	}

	if _, err := runApp(t, exec, "", "constellation", "leave", "Family", "Tom"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	out, err = runApp(t, exec, "", "constellation", "list")
	if err != nil {
		t.Fatalf("constellation list failed: %v", err)
	}
	var l ops.ListConstellationsOutput
	decodeJSON(t, out, &l)
	if len(l.Items) != 1 || len(l.Items[0].Members) != 1 || l.Items[0].Members[0].Name != "Anna" {
		t.Errorf("constellations = %+v", l.Items)
	}

	_, err = runApp(t, exec, "", "constellation", "join", "Family")
	if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("join with one arg: error = %v, want [INVALID_REQUEST]", err)
	}

	if _, err := runApp(t, exec, "", "constellation", "rm", "Family"); err != nil {
		t.Fatalf("constellation rm failed: %v", err)
	}
	out, _ = runApp(t, exec, "", "constellation", "list")
	decodeJSON(t, out, &l)
	if len(l.Items) != 0 {
		t.Errorf("expected no constellations after rm, got %+v", l.Items)
	}
}

// TestCLITagsAndTimeline tests the read-only listing commands.
func TestCLITagsAndTimeline(t *testing.T) {
	exec := setupTestExecutor(t)
	mustCreate(t, exec, "Tom")
	mustCreate(t, exec, "Anna")

	for _, line := range []string{"@Anna !Call #family ^3d", "@Tom !Coffee #work #workout"} {
		if _, err := runApp(t, exec, "", "run", line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}

	out, err := runApp(t, exec, "", "tags", "--prefix", "wo")
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	var tags ops.ListTagsOutput
	decodeJSON(t, out, &tags)
	if len(tags.Items) != 2 {
		t.Errorf("tags with prefix wo = %+v, want 2", tags.Items)
	}

	out, err = runApp(t, exec, "", "timeline", "--limit", "1")
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	var tl ops.TimelineOutput
	decodeJSON(t, out, &tl)
	if len(tl.Items) != 1 || tl.Items[0].ContactName != "Tom" {
		t.Errorf("timeline = %+v, want newest entry for Tom", tl.Items)
	}
}

// TestCLIPurge tests the purge command.
func TestCLIPurge(t *testing.T) {
	exec := setupTestExecutor(t)
	mustCreate(t, exec, "Tom")

	ctx := context.Background()
	_, sess := exec.Run(ctx, ops.Session{}, "@Tom !Coffee")
	if res, _ := exec.Run(ctx, sess, "!undo"); !res.Success {
		t.Fatalf("undo failed: %s", res.Message)
	}

	out, err := runApp(t, exec, "", "purge", "--older-than", "1d")
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	var p ops.PurgeOutput
	decodeJSON(t, out, &p)
	if p.Purged != 0 {
		t.Errorf("purged %d, want 0 for a fresh deletion with --older-than 1d", p.Purged)
	}

	out, err = runApp(t, exec, "", "purge", "--contact", "Tom")
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	decodeJSON(t, out, &p)
	if p.Purged != 1 {
		t.Errorf("purged %d, want 1", p.Purged)
	}
	if p.Message != "Permanently deleted 1 interaction for Tom" {
		t.Errorf("message = %q", p.Message)
	}

	_, err = runApp(t, exec, "", "purge", "--older-than", "week")
	if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("error = %v, want [INVALID_REQUEST]", err)
	}
}

// TestCLIShell tests that the shell keeps one session across lines.
func TestCLIShell(t *testing.T) {
	exec := setupTestExecutor(t)
	mustCreate(t, exec, "Tom")

	out, err := runApp(t, exec, "@Tom !Coffee #work\n\n!undo\n!undo\nquit\n@Tom !Ignored\n", "shell")
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}

	for _, want := range []string{
		"ok: Logged Coffee with Tom",
		"ok: Undid Coffee with Tom",
		"error: nothing to undo",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in shell output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Ignored") {
		t.Error("lines after quit must not run")
	}
}

func TestCLIShell_ConversionPrompt(t *testing.T) {
	exec := setupTestExecutor(t)
	tom := mustCreate(t, exec, "Tom")

	input := "@Tom > city: Paris\n@Tom > city + Rome\ny\n@Tom > city + Oslo\nn\n"
	out, err := runApp(t, exec, input, "shell")
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if strings.Count(out, "Convert to a list? [y/N]") != 1 {
		t.Errorf("expected exactly one prompt:\n%s", out)
	}

	a, err := db.GetArtifact(context.Background(), exec.DB(), tom.ID, "city")
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if got := a.Value.Items(); len(got) != 3 || got[2] != "Oslo" {
		t.Errorf("city = %v, want [Paris Rome Oslo]", got)
	}
}

func TestCLIShell_SearchShowsHistory(t *testing.T) {
	exec := setupTestExecutor(t)
	mustCreate(t, exec, "Tom")

	out, err := runApp(t, exec, "@Tom !Coffee #work \"new job\"\n@Tom !Dinner\n@Tom coffee\n", "shell")
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if !strings.Contains(out, "Coffee #work - new job") {
		t.Errorf("expected matching interaction in output:\n%s", out)
	}
	if strings.Contains(out, "  Dinner") {
		t.Errorf("did not expect Dinner in search output:\n%s", out)
	}
}

// TestCLIErrorHandling tests error output formatting.
func TestCLIErrorHandling(t *testing.T) {
	exec := setupTestExecutor(t)

	_, err := runApp(t, exec, "", "contact", "show", "Nobody")
	if err == nil {
		t.Fatal("expected error for unknown contact")
	}
	if !strings.HasPrefix(err.Error(), "[NOT_FOUND]") {
		t.Errorf("error = %q, want [NOT_FOUND] prefix", err.Error())
	}

	_, err = runApp(t, exec, "", "contact", "show")
	if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("error = %v, want [INVALID_REQUEST]", err)
	}
}
