package xrsim

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/xr"
)

// AssetLoader returns a loader whose loads complete as.Delay steps after
// they start, with a unit model or, when as.Fail is set, an error
// wrapping arplace.ErrAssetLoad.
func (d *Device) AssetLoader(as AssetSpec) asset.Loader {
	return asset.LoaderFunc(func(ctx context.Context, source string) *xr.Future[*asset.Model] {
		f := xr.NewFuture[*asset.Model]()
		d.after(as.Delay, func() {
			if err := ctx.Err(); err != nil {
				f.Reject(fmt.Errorf("xrsim: %s: %w: %w", source, arplace.ErrAssetLoad, err))
				return
			}
			if as.Fail {
				f.Reject(fmt.Errorf("xrsim: %s: %w", source, arplace.ErrAssetLoad))
				return
			}
			name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			f.Resolve(asset.UnitModel(name))
		})
		return f
	})
}
