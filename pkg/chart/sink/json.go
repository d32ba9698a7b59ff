package sink

import (
	"encoding/json"

	"github.com/matzehuels/districtviz/pkg/chart"
)

// SceneVersion is bumped when the JSON scene shape changes incompatibly.
const SceneVersion = 1

type jsonOutput struct {
	Version int `json:"version"`
	chart.Scene
}

// RenderJSON exports the scene as pretty-printed JSON.
func RenderJSON(s chart.Scene) ([]byte, error) {
	return json.MarshalIndent(jsonOutput{Version: SceneVersion, Scene: s}, "", "  ")
}

// DecodeJSON reads a scene written by RenderJSON.
func DecodeJSON(data []byte) (chart.Scene, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return chart.Scene{}, err
	}
	return out.Scene, nil
}
