package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("writes defaults when missing", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "photo-cycler.yaml")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.FileExists(t, path)
		assert.Equal(t, 8888, cfg.Server.Port)
		assert.Equal(t, 5.0, cfg.Cycler.UpdateRate)
		assert.Equal(t, filepath.Join(dir, "photos"), cfg.Storage.PhotosDirectory)
		assert.Equal(t, filepath.Join(dir, "static"), cfg.Storage.StaticDirectory)

		// The generated file loads back to the same values.
		again, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, again)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cycler:\n  update_rate_seconds: 12\nstorage:\n  photos_directory: /srv/photos\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 12.0, cfg.Cycler.UpdateRate)
		assert.Equal(t, "/srv/photos", cfg.Storage.PhotosDirectory)
		assert.Equal(t, filepath.Join(dir, "static"), cfg.Storage.StaticDirectory)
		assert.Equal(t, 8888, cfg.Server.Port)
		assert.Equal(t, "current.jpg", cfg.Storage.CurrentName)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects negative update rate", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cycler:\n  update_rate_seconds: -1\n"), 0644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "update_rate_seconds")
	})

	t.Run("rejects non-finite update rate", func(t *testing.T) {
		for _, value := range []string{".nan", ".inf", "-.inf"} {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("cycler:\n  update_rate_seconds: "+value+"\n"), 0644))

			_, err := LoadConfig(path)
			assert.ErrorContains(t, err, "finite", value)
		}
	})

	t.Run("rejects nested current name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage:\n  current_name: ../x.jpg\n"), 0644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "current_name")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("UPDATE_RATE", "2.5")
		t.Setenv("PHOTOS_DIR", "/data/photos")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, 2.5, cfg.Cycler.UpdateRate)
		assert.Equal(t, "/data/photos", cfg.Storage.PhotosDirectory)
	})
}

func TestEnsureDirectories(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		root := t.TempDir()
		cfg := DefaultConfig()
		require.NoError(t, cfg.SetDirectories(filepath.Join(root, "photos"), filepath.Join(root, "static")))

		require.NoError(t, cfg.EnsureDirectories(true))

		assert.DirExists(t, filepath.Join(root, "photos"))
		assert.DirExists(t, filepath.Join(root, "static"))
	})

	t.Run("fails without creation", func(t *testing.T) {
		root := t.TempDir()
		cfg := DefaultConfig()
		require.NoError(t, cfg.SetDirectories(filepath.Join(root, "photos"), root))

		err := cfg.EnsureDirectories(false)
		assert.ErrorIs(t, err, ErrMissingDirectory)
		assert.NoDirExists(t, filepath.Join(root, "photos"))
	})

	t.Run("fails when creation is impossible", func(t *testing.T) {
		root := t.TempDir()
		blocker := filepath.Join(root, "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		cfg := DefaultConfig()
		require.NoError(t, cfg.SetDirectories(filepath.Join(blocker, "photos"), root))

		assert.Error(t, cfg.EnsureDirectories(true))
	})

	t.Run("fails when path is a file", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "photos")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		cfg := DefaultConfig()
		require.NoError(t, cfg.SetDirectories(file, root))

		assert.ErrorContains(t, cfg.EnsureDirectories(true), "not a directory")
	})
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 8080
	assert.Equal(t, "127.0.0.1:8080", cfg.GetServerAddr())
}

func TestLoadConfigIfExists(t *testing.T) {
	t.Run("missing file is not written", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		wd, err := os.Getwd()
		require.NoError(t, err)

		cfg, err := LoadConfigIfExists("photo-cycler.yaml")
		require.NoError(t, err)

		assert.NoFileExists(t, filepath.Join(dir, "photo-cycler.yaml"))
		assert.Equal(t, 8888, cfg.Server.Port)
		assert.Equal(t, filepath.Join(wd, "photos"), cfg.Storage.PhotosDirectory)
	})

	t.Run("existing file is read", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0644))

		cfg, err := LoadConfigIfExists(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
	})
}
