package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/config"
	"github.com/samcharles93/palmdb/pkg/pdb"
)

func boolPtr(b bool) *bool { return &b }

func runCodec(t *testing.T, cfg config.Config, args ...string) codecSettings {
	t.Helper()
	var s codecSettings
	cmd := &cli.Command{
		Name:  "test",
		Flags: append(s.readFlags(), s.writeFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			s.applyConfig(c, cfg)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return s
}

func TestCodecConfigPrecedence(t *testing.T) {
	t.Parallel()

	cfg := config.Config{UnixEpoch: boolPtr(true), Strict: boolPtr(true), Location: "UTC"}

	s := runCodec(t, cfg)
	require.True(t, s.unixEpoch)
	require.True(t, s.strict)
	require.Equal(t, "UTC", s.location)

	s = runCodec(t, cfg, "--strict=false", "--unix-epoch=false", "--location", "Local")
	require.False(t, s.unixEpoch)
	require.False(t, s.strict)
	require.Equal(t, "Local", s.location)

	s = runCodec(t, config.Config{})
	require.False(t, s.strict)
	require.Equal(t, "Local", s.location)
}

func TestServeConfigPrecedence(t *testing.T) {
	t.Parallel()

	limit := int64(1024)
	cfg := config.Config{ServerAddress: ":9999", MaxUploadBytes: &limit}

	run := func(args ...string) (string, int64) {
		var (
			addr      string
			maxUpload int64
		)
		cmd := &cli.Command{
			Name: "serve",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8080", Destination: &addr},
				&cli.Int64Flag{Name: "max-upload", Value: 10, Destination: &maxUpload},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				applyServeConfig(c, cfg, &addr, &maxUpload)
				return nil
			},
		}
		require.NoError(t, cmd.Run(context.Background(), append([]string{"serve"}, args...)))
		return addr, maxUpload
	}

	addr, maxUpload := run()
	require.Equal(t, ":9999", addr)
	require.Equal(t, int64(1024), maxUpload)

	addr, maxUpload = run("--addr", ":1234", "--max-upload", "99")
	require.Equal(t, ":1234", addr)
	require.Equal(t, int64(99), maxUpload)
}

func writeSample(t *testing.T, path string) *pdb.GenericDatabase {
	t.Helper()
	db := pdb.NewGeneric()
	db.Name = "Memo DB"
	db.Type = "DATA"
	db.Creator = "memo"
	db.CreationTime = time.Date(2003, time.April, 5, 6, 7, 8, 0, time.UTC)
	db.SetAppInfo(pdb.GenericBlock{Data: []byte("Unfiled")})
	db.Append(
		pdb.GenericRecord{Attrs: pdb.AttrDirty, Data: []byte("first memo")},
		pdb.GenericRecord{Attrs: pdb.Attributes(0).WithCategory(4), Data: []byte("second memo")},
	)
	require.NoError(t, pdb.WriteFile(path, db, pdb.WriteOptions{Location: time.UTC}))
	return db
}

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), append([]string{"pdb"}, args...)))
	return out.String()
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: error\nlocation: UTC\n"), 0o644))
	t.Setenv(config.EnvPath, cfgPath)

	src := filepath.Join(dir, "memo.pdb")
	writeSample(t, src)

	out := runApp(t, "inspect", "--file", src, "--json", "--records")
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep), out)
	require.Equal(t, "Memo DB", rep["name"])
	require.EqualValues(t, 2, rep["num_records"])
	require.Len(t, rep["records"], 2)

	text := runApp(t, "inspect", "-f", src)
	require.Contains(t, text, "--- Header ---")
	require.Contains(t, text, "2003-04-05T06:07:08Z (palm epoch)")

	extracted := filepath.Join(dir, "memo")
	out = runApp(t, "extract", "--file", src, "--out", extracted)
	require.Contains(t, out, "Memo DB: 2 records")
	require.FileExists(t, filepath.Join(extracted, "manifest.yaml"))

	packed := filepath.Join(dir, "packed.pdb")
	runApp(t, "pack", "--dir", extracted, "--out", packed)

	repacked := filepath.Join(dir, "repacked.pdb")
	runApp(t, "repack", "--file", src, "--out", repacked)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	for _, p := range []string{packed, repacked} {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		require.Equal(t, want, got, p)
	}

	unix := filepath.Join(dir, "unix.pdb")
	runApp(t, "repack", "--file", src, "--out", unix, "--unix-epoch")
	data, err := os.ReadFile(unix)
	require.NoError(t, err)
	idx, err := pdb.ReadIndex(data)
	require.NoError(t, err)
	require.Equal(t, pdb.EpochUnix, idx.CreationEpoch)

	require.Contains(t, runApp(t, "version"), "version:")
}
