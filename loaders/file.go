package loaders

import (
	"os"
	"strings"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// FileLoader loads asset bytes from the local filesystem. It serves the
// file scheme at the bytes output type.
type FileLoader struct{}

func NewFileLoader() *FileLoader { return &FileLoader{} }

// CanReuseLoadedAssets reports true: file bytes are identical for every
// consumer of the same location.
func (l *FileLoader) CanReuseLoadedAssets() bool { return true }

func (l *FileLoader) Load(req assetengine.LoadRequest, done func(assetengine.LoadedAsset, error)) assetengine.CancelFunc {
	path := strings.TrimPrefix(req.URL, "file://")

	data, err := os.ReadFile(path)
	if err != nil {
		done(nil, errors.LoadFailed(req.Key.String(), err))
		return nil
	}

	done(&assetengine.BytesAsset{Bytes: data}, nil)
	return nil
}
