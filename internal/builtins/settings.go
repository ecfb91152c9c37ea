package builtins

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/settings"
)

const (
	settingLineFormat = "%s=%s"
	settingChangedFmt = "%s: %q -> %q"
	settingCreatedFmt = "%s = %q"
)

type settingsCommand struct {
	_ command.Meta `command:"settings,config" description:"read and change settings"`

	store    *settings.Store
	defaults map[string]string

	_ command.Method `method:"List" command:"" main:"true" description:"list every setting"`
	_ command.Method `method:"Get" command:"get" params:"key" description:"print one setting"`
	_ command.Method `method:"Set" command:"set" params:"key,value" greedy:"true" description:"change a setting"`
	_ command.Method `method:"Reset" command:"reset" description:"remove every setting"`
	_ command.Method `method:"Export" command:"export" params:"path:snapshot file" description:"write a snapshot"`
	_ command.Method `method:"Import" command:"import" params:"path:snapshot file" description:"load a snapshot"`

	Defaults *settingsDefaultsCommand `command:"defaults" description:"inspect the default settings"`
}

type settingsDefaultsCommand struct {
	Parent *settingsCommand

	_ command.Method `method:"List" command:"" main:"true"`
	_ command.Method `method:"Restore" command:"restore" description:"replace every setting with its default"`
}

var defaultSettings = map[string]string{
	"console.color": "true",
	"locale":        "en_US",
}

func registerSettings(manager *command.Manager, options Options) error {
	accepted, err := manager.Create(&settingsCommand{store: options.Store, defaults: maps.Clone(defaultSettings)})
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("settings command: %w", command.ErrUnsupportedSource)
	}
	return nil
}

func (settingsGroup *settingsCommand) List() []string {
	return formatSettings(settingsGroup.store.Entries())
}

func (settingsGroup *settingsCommand) Get(key string) (string, error) {
	value, err := settingsGroup.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, key)
	}
	return value, nil
}

func (settingsGroup *settingsCommand) Set(key string, value string) string {
	previous, existed := settingsGroup.store.Set(key, value)
	if !existed {
		return fmt.Sprintf(settingCreatedFmt, key, value)
	}
	return fmt.Sprintf(settingChangedFmt, key, previous, value)
}

func (settingsGroup *settingsCommand) Reset() {
	settingsGroup.store.Reset()
}

// #nosec G304
func (settingsGroup *settingsCommand) Export(path string) (string, error) {
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("create snapshot %s: %w", path, err)
	}
	exportError := settingsGroup.store.Export(file)
	closeError := file.Close()
	if exportError != nil {
		return "", exportError
	}
	if closeError != nil {
		return "", fmt.Errorf("close snapshot %s: %w", path, closeError)
	}
	return fmt.Sprintf("exported %d settings to %s", len(settingsGroup.store.Keys()), path), nil
}

// #nosec G304
func (settingsGroup *settingsCommand) Import(path string) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer file.Close()
	if importError := settingsGroup.store.Import(file); importError != nil {
		return "", fmt.Errorf("import snapshot %s: %w", path, importError)
	}
	return fmt.Sprintf("imported %d settings from %s", len(settingsGroup.store.Keys()), path), nil
}

func (defaultsGroup *settingsDefaultsCommand) List() []string {
	return formatSettings(defaultsGroup.Parent.defaults)
}

func (defaultsGroup *settingsDefaultsCommand) Restore() []string {
	defaultsGroup.Parent.store.Replace(defaultsGroup.Parent.defaults)
	return defaultsGroup.Parent.List()
}

func formatSettings(entries map[string]string) []string {
	lines := make([]string, 0, len(entries))
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		lines = append(lines, fmt.Sprintf(settingLineFormat, key, entries[key]))
	}
	return lines
}
