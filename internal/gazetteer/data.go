package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed districts.json
var districtsJSON []byte

var (
	defaultOnce  sync.Once
	defaultIndex *Index
	defaultErr   error
)

// Default returns the index built from the embedded Korean district list.
// It is parsed once per process.
func Default() (*Index, error) {
	defaultOnce.Do(func() {
		var raw []string
		if err := json.Unmarshal(districtsJSON, &raw); err != nil {
			defaultErr = fmt.Errorf("decode embedded districts: %w", err)
			return
		}
		defaultIndex, defaultErr = New(raw)
	})
	return defaultIndex, defaultErr
}
