package scene

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将场景输出为 JSON，便于检查数据绑定与默认值。
func WriteDebugJSON(sc *Scene, path string) error {
	if sc == nil {
		return nil
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
