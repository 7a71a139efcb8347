package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

/* ------------------------------------------------------------------------- */
/* MOCK IMPLEMENTATIONS FOR TESTING                                          */
/* ------------------------------------------------------------------------- */

type mockMarshaler struct {
	marshalErr    error
	marshalOutput []byte
}

func (m *mockMarshaler) Marshal(v any) ([]byte, error) {
	if m.marshalErr != nil {
		return nil, m.marshalErr
	}
	if m.marshalOutput != nil {
		return m.marshalOutput, nil
	}
	return []byte("site_root: test\n"), nil
}

type mockFileOpener struct {
	openFileErr error
}

func (m *mockFileOpener) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if m.openFileErr != nil {
		return nil, m.openFileErr
	}
	return os.OpenFile(name, flag, perm)
}

type mockFileWriter struct {
	writeFileErr error
}

func (m *mockFileWriter) WriteFile(file *os.File, data []byte) (int, error) {
	if m.writeFileErr != nil {
		return 0, m.writeFileErr
	}
	return file.Write(data)
}

/* ------------------------------------------------------------------------- */
/* SAVE CONFIG                                                               */
/* ------------------------------------------------------------------------- */

func TestConfigSaver_SaveTo(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *Config
		wantErr       bool
		mockMarshaler *mockMarshaler
		mockOpener    *mockFileOpener
		mockWriter    *mockFileWriter
	}{
		{
			name: "save minimal config",
			cfg:  &Config{SiteRoot: "."},
		},
		{
			name: "save full config",
			cfg: &Config{
				SiteRoot:    "/srv/site",
				MediaRoot:   "/srv/site/media",
				HookTimeout: "1m",
				Log:         &LogConfig{Level: "info", Format: "json"},
			},
		},
		{
			name:          "marshal failure",
			cfg:           &Config{SiteRoot: "."},
			wantErr:       true,
			mockMarshaler: &mockMarshaler{marshalErr: fmt.Errorf("mock marshal failure")},
		},
		{
			name:       "open file failure",
			cfg:        &Config{SiteRoot: "."},
			wantErr:    true,
			mockOpener: &mockFileOpener{openFileErr: fmt.Errorf("permission denied")},
		},
		{
			name:       "write file failure",
			cfg:        &Config{SiteRoot: "."},
			wantErr:    true,
			mockWriter: &mockFileWriter{writeFileErr: fmt.Errorf("simulated write failure")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), DefaultConfigFile)

			var marshaler interface{ Marshal(any) ([]byte, error) }
			var opener FileOpener
			var writer FileWriter
			if tt.mockMarshaler != nil {
				marshaler = tt.mockMarshaler
			}
			if tt.mockOpener != nil {
				opener = tt.mockOpener
			}
			if tt.mockWriter != nil {
				writer = tt.mockWriter
			}

			err := NewConfigSaver(marshaler, opener, writer).SaveTo(tt.cfg, configFile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveTo() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := ReadFile(configFile)
			if err != nil {
				t.Fatalf("saved config does not load back: %v", err)
			}
			if got.SiteRoot != tt.cfg.SiteRoot || got.HookTimeout != tt.cfg.HookTimeout {
				t.Errorf("round trip = %+v, want %+v", got, tt.cfg)
			}
		})
	}
}

func TestConfigSaver_WriteError(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), DefaultConfigFile)
	saver := NewConfigSaver(nil, nil, &mockFileWriter{writeFileErr: fmt.Errorf("simulated write failure")})

	err := saver.SaveTo(&Config{SiteRoot: "."}, configFile)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := fmt.Sprintf("failed to write config to %q: simulated write failure", configFile)
	if err.Error() != want {
		t.Errorf("unexpected error. got: %q, want: %q", err.Error(), want)
	}
}

func TestConfigSaver_FilePermissions(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := NewConfigSaver(nil, nil, nil).WriteTo([]byte("site_root: .\n"), configFile); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != ConfigFilePerm {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), ConfigFilePerm)
	}
}

func TestSaveConfigFn(t *testing.T) {
	runInTempDir(t, filepath.Join(t.TempDir(), "dummy"), func() {
		if err := SaveConfigFn(Default()); err != nil {
			t.Fatalf("SaveConfigFn() error = %v", err)
		}
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			t.Errorf("%s was not created: %v", DefaultConfigFile, err)
		}
	})
}
