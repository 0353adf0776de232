package normalize

import (
	"os"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// LoadOverrides reads the exact-match override file, a flat JSON object of
// raw team name to community name. A missing file is not an error; manual
// overrides are optional.
func LoadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "read overrides file %s", path)
	}

	out := map[string]string{}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "parse overrides file %s", path)
	}

	return out, nil
}

// SaveOverrides writes the override map back out, pretty-printed so the
// file stays hand-editable.
func SaveOverrides(path string, overrides map[string]string) error {
	if path == "" {
		return errors.New("overrides path is required")
	}

	data, err := sonic.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal overrides")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write overrides file %s", path)
	}

	return nil
}
