package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/nodefs/internal/cli"
)

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, `"poll_interval_ms": 5007`)
	cli.AssertContains(t, stdout, `"high_water_mark": 65536`)
	cli.AssertContains(t, stdout, "# effective_cwd: "+c.Dir)
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_Sources_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	xdg := t.TempDir()
	c.Env["XDG_CONFIG_HOME"] = xdg

	c.WriteFile(".nodefs.json", `{
		// project
		"high_water_mark": 1024,
	}`)

	global := filepath.Join(xdg, "nodefs", "config.json")
	if err := os.MkdirAll(filepath.Dir(global), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(global, []byte(`{"log_level": "error"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, `"high_water_mark": 1024`)
	cli.AssertContains(t, stdout, `"log_level": "error"`)
	cli.AssertContains(t, stdout, "#   global: "+global)
	cli.AssertContains(t, stdout, "#   project: "+c.Path(".nodefs.json"))
}

func Test_Explicit_Config_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("alt.json", `{"encoding": "hex"}`)

	stdout := c.MustRun("-c", "alt.json", "print-config")
	cli.AssertContains(t, stdout, `"encoding": "hex"`)

	stderr := c.MustFail("--config", "absent.json", "print-config")
	cli.AssertContains(t, stderr, "config file not found")
}

func Test_Verbose_Flag_Overrides_Log_Level_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".nodefs.json", `{"log_level": "error"}`)

	cli.AssertContains(t, c.MustRun("-v", "print-config"), `"log_level": "debug"`)
}

func Test_Chaos_Config_Injects_Faults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("data.txt", "payload")
	c.WriteFile(".nodefs.json", `{"chaos": {"seed": 1, "open_fail_rate": 1, "trace_capacity": 8}}`)

	_, stderr, code := c.Run("-v", "cat", "data.txt")
	if code != 1 {
		t.Fatalf("exit=%d, want 1 with every open failing", code)
	}

	cli.AssertContains(t, stderr, "error: ")
	cli.AssertContains(t, stderr, "fault injection summary")
	cli.AssertContains(t, stderr, "faults=1")
}
