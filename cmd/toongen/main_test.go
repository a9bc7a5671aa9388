package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toongen/internal/config"
	"toongen/internal/generator"
)

var workspaceFiles = map[string]string{
	"Parts/CommonProperties.shaderblock":         "Properties {\n    _BaseColor (\"BaseColor\", Color) = (1,1,1,1)\n    _Smoothness (\"Smoothness\", Range(0,1)) = 0.5\n}\n",
	"Parts/TessellationProperties.shaderblock":   "Properties {\n    _Smoothness (\"Smoothness\", Range(0,1)) = 0.75\n    _TessEdgeLength (\"Edge length\", Range(2,50)) = 5\n}\n",
	"Parts/UnityToon.shadertemplate":             "Shader \"Toon/Toon\" {\n    Properties {\n        [COMMON_PROPERTIES]\n    }\n}\n",
	"Parts/UnityToonTessellation.shadertemplate": "Shader \"Toon/ToonTessellation\" {\n    Properties {\n        [COMMON_PROPERTIES]\n        [TESSELLATION_PROPERTIES]\n    }\n}\n",
}

// setupWorkspace writes a shader workspace and its config, then runs the
// root pre-run so cfg and logger are loaded from it.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	ws := t.TempDir()
	for path, content := range workspaceFiles {
		full := filepath.Join(ws, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	c := config.DefaultConfig()
	c.Logging.Level = "error"
	c.ShaderSets = []config.ShaderSetConfig{{
		Name:         "UnityToon",
		Common:       "Parts/CommonProperties.shaderblock",
		Tessellation: "Parts/TessellationProperties.shaderblock",
		Targets: []config.TargetConfig{
			{Name: "UnityToon", Template: "Parts/UnityToon.shadertemplate", Output: "Shaders/UnityToon.shader"},
			{Name: "UnityToonTessellation", Template: "Parts/UnityToonTessellation.shadertemplate", Output: "Shaders/UnityToonTessellation.shader", Tessellated: true},
		},
	}}
	require.NoError(t, c.Save(filepath.Join(ws, config.DefaultPath)))

	workspace = ws
	configPath = config.DefaultPath
	verbose = false
	t.Cleanup(func() {
		workspace = "."
		logger = nil
		cfg = nil
	})

	require.NoError(t, setup(&cobra.Command{}, nil))
	logger = zap.NewNop()
	return ws
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunGenerate(t *testing.T) {
	ws := setupWorkspace(t)
	cmd, out := newTestCommand()

	require.NoError(t, runGenerate(cmd, nil))

	base := readFile(t, filepath.Join(ws, "Shaders/UnityToon.shader"))
	assert.True(t, strings.HasPrefix(base, "//Auto-generated on "))
	assert.Contains(t, base, "        _Smoothness (\"Smoothness\", Range(0,1)) = 0.5\n")
	assert.NotContains(t, base, "_TessEdgeLength")

	tess := readFile(t, filepath.Join(ws, "Shaders/UnityToonTessellation.shader"))
	assert.Equal(t, 1, strings.Count(tess, "_Smoothness"))
	assert.Contains(t, tess, "0.75")
	assert.Contains(t, tess, "_TessEdgeLength")

	assert.Contains(t, out.String(), "Shaders/UnityToon.shader (UnityToon)")
	assert.Contains(t, out.String(), "Shaders/UnityToonTessellation.shader (UnityToon)")
}

func TestRunGenerate_FailureWritesNothing(t *testing.T) {
	ws := setupWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(ws, "Parts/UnityToonTessellation.shadertemplate")))
	cmd, _ := newTestCommand()

	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, generator.ErrNoTemplate)
	assert.NoFileExists(t, filepath.Join(ws, "Shaders/UnityToon.shader"))
}

func TestRunGenerate_InvalidConfig(t *testing.T) {
	setupWorkspace(t)
	cfg.ShaderSets = nil
	cmd, _ := newTestCommand()

	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shader_sets configured")
}

func TestRunCheck(t *testing.T) {
	ws := setupWorkspace(t)

	cmd, out := newTestCommand()
	err := runCheck(cmd, nil)
	assert.ErrorIs(t, err, errStale)
	assert.Contains(t, out.String(), "--- /dev/null")
	assert.Contains(t, out.String(), "2 shader(s) out of date")
	assert.NoFileExists(t, filepath.Join(ws, "Shaders/UnityToon.shader"))

	gen, _ := newTestCommand()
	require.NoError(t, runGenerate(gen, nil))

	cmd, out = newTestCommand()
	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "up to date")

	tessPath := filepath.Join(ws, "Parts/TessellationProperties.shaderblock")
	edited := strings.Replace(workspaceFiles["Parts/TessellationProperties.shaderblock"], "= 5", "= 7", 1)
	require.NoError(t, os.WriteFile(tessPath, []byte(edited), 0644))

	cmd, out = newTestCommand()
	assert.ErrorIs(t, runCheck(cmd, nil), errStale)
	assert.Contains(t, out.String(), "+    ")
	assert.Contains(t, out.String(), "= 7")
	assert.Contains(t, out.String(), "1 shader(s) out of date")
}

func TestRunConfigInit(t *testing.T) {
	ws := t.TempDir()
	workspace = ws
	configPath = "config/toongen.yaml"
	logger = zap.NewNop()
	forceInit = false
	t.Cleanup(func() {
		workspace = "."
		configPath = config.DefaultPath
		forceInit = false
	})

	cmd, out := newTestCommand()
	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), "wrote")

	loaded, err := config.Load(filepath.Join(ws, "config/toongen.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().ShaderSets, loaded.ShaderSets)

	err = runConfigInit(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	forceInit = true
	assert.NoError(t, runConfigInit(cmd, nil))
}

func TestRunConfigShow(t *testing.T) {
	setupWorkspace(t)
	cmd, out := newTestCommand()

	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, out.String(), "shader_sets:")
	assert.Contains(t, out.String(), "Parts/CommonProperties.shaderblock")
}

func TestInputOwners(t *testing.T) {
	ws := t.TempDir()
	fsys := generator.NewOSFileSystem(ws)
	sets := []generator.ShaderSet{
		{Name: "a", Common: "shared.shaderblock", Targets: []generator.Target{{Template: "a.shadertemplate"}}},
		{Name: "b", Common: "shared.shaderblock", Tessellation: "tess.shaderblock", Targets: []generator.Target{{Output: "b.shader"}}},
	}

	owners, err := inputOwners(fsys, sets)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, owners[filepath.Join(ws, "shared.shaderblock")])
	assert.Equal(t, []int{0}, owners[filepath.Join(ws, "a.shadertemplate")])
	assert.Equal(t, []int{1}, owners[filepath.Join(ws, "tess.shaderblock")])
	assert.Len(t, owners, 3)
}

func TestRegenerate_OnlyAffectedSets(t *testing.T) {
	ws := setupWorkspace(t)
	runner, fsys, err := newRunner()
	require.NoError(t, err)

	sets := shaderSets(cfg)
	sets = append(sets, generator.ShaderSet{
		Name:    "Missing",
		Common:  "Parts/Missing.shaderblock",
		Targets: []generator.Target{{Name: "M", Output: "Shaders/M.shader"}},
	})
	owners, err := inputOwners(fsys, sets)
	require.NoError(t, err)

	handler := regenerate(runner, sets, owners, zap.NewNop())
	handler(context.Background(), []string{filepath.Join(ws, "Parts/UnityToon.shadertemplate")})

	assert.FileExists(t, filepath.Join(ws, "Shaders/UnityToon.shader"))
	assert.FileExists(t, filepath.Join(ws, "Shaders/UnityToonTessellation.shader"))
	assert.NoFileExists(t, filepath.Join(ws, "Shaders/M.shader"))
}

func brokenSet() config.ShaderSetConfig {
	return config.ShaderSetConfig{
		Name:    "Broken",
		Common:  "Parts/Missing.shaderblock",
		Targets: []config.TargetConfig{{Name: "Broken", Template: "Parts/UnityToon.shadertemplate", Output: "Shaders/Broken.shader"}},
	}
}

func TestRunGenerate_FailingSetDoesNotBlockOthers(t *testing.T) {
	ws := setupWorkspace(t)
	cfg.ShaderSets = append(cfg.ShaderSets, brokenSet())
	cmd, out := newTestCommand()

	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `shader set "Broken"`)

	assert.FileExists(t, filepath.Join(ws, "Shaders/UnityToon.shader"))
	assert.FileExists(t, filepath.Join(ws, "Shaders/UnityToonTessellation.shader"))
	assert.NoFileExists(t, filepath.Join(ws, "Shaders/Broken.shader"))
	assert.Contains(t, out.String(), "Shaders/UnityToon.shader (UnityToon)")
}

func TestSelectedSets(t *testing.T) {
	ws := setupWorkspace(t)
	cfg.ShaderSets = append(cfg.ShaderSets, brokenSet())
	t.Cleanup(func() { setNames = nil })

	setNames = []string{"UnityToon"}
	cmd, _ := newTestCommand()
	require.NoError(t, runGenerate(cmd, nil))
	assert.FileExists(t, filepath.Join(ws, "Shaders/UnityToon.shader"))

	check, _ := newTestCommand()
	assert.NoError(t, runCheck(check, nil))

	setNames = []string{"Nope"}
	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown shader set "Nope"`)

	setNames = nil
	sets, err := selectedSets(cfg)
	require.NoError(t, err)
	assert.Len(t, sets, 2)
}
