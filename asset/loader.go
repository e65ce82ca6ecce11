package asset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/xr"
)

// Loader loads a model asynchronously.
type Loader interface {
	Load(ctx context.Context, source string) *xr.Future[*Model]
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, source string) *xr.Future[*Model]

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, source string) *xr.Future[*Model] {
	return f(ctx, source)
}

// GLTFLoader loads glTF 2.0 documents (.gltf with external or embedded
// buffers, or binary .glb) on a background goroutine.
type GLTFLoader struct {
	cache *Cache
}

// LoaderOption configures a GLTFLoader.
type LoaderOption func(*GLTFLoader)

// WithCache shares decoded models through c.
func WithCache(c *Cache) LoaderOption {
	return func(l *GLTFLoader) {
		l.cache = c
	}
}

// NewGLTFLoader creates a loader. Without WithCache, a private cache with
// DefaultCacheCapacity entries is used.
func NewGLTFLoader(opts ...LoaderOption) *GLTFLoader {
	l := &GLTFLoader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache(DefaultCacheCapacity)
	}
	return l
}

// Load starts loading source. A cached model resolves immediately. Errors
// wrap arplace.ErrAssetLoad.
func (l *GLTFLoader) Load(ctx context.Context, source string) *xr.Future[*Model] {
	if m, ok := l.cache.Get(source); ok {
		return xr.Resolved(m)
	}

	f := xr.NewFuture[*Model]()
	go func() {
		m, err := l.decode(ctx, source)
		if err != nil {
			arplace.Logger().Warn("asset load failed", "source", source, "err", err)
			f.Reject(err)
			return
		}
		l.cache.Set(source, m)
		arplace.Logger().Info("asset loaded", "source", source, "meshes", m.Meshes)
		f.Resolve(m)
	}()
	return f
}

func (l *GLTFLoader) decode(ctx context.Context, source string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("asset: %s: %w: %w", source, arplace.ErrAssetLoad, err)
	}
	doc, err := gltf.Open(source)
	if err != nil {
		return nil, fmt.Errorf("asset: %s: %w: %w", source, arplace.ErrAssetLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("asset: %s: %w: %w", source, arplace.ErrAssetLoad, err)
	}
	return modelFromDocument(source, doc), nil
}

// modelFromDocument summarizes doc, bounding all POSITION accessors.
func modelFromDocument(source string, doc *gltf.Document) *Model {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	for _, mesh := range doc.Meshes {
		if mesh != nil && mesh.Name != "" {
			name = mesh.Name
			break
		}
	}

	var (
		minV, maxV xr.Vec3
		bounded    bool
	)
	for _, mesh := range doc.Meshes {
		if mesh == nil {
			continue
		}
		for _, prim := range mesh.Primitives {
			if prim == nil {
				continue
			}
			idx, ok := prim.Attributes[gltf.POSITION]
			if !ok || int(idx) >= len(doc.Accessors) {
				continue
			}
			acc := doc.Accessors[idx]
			if acc == nil || len(acc.Min) < 3 || len(acc.Max) < 3 {
				continue
			}
			lo := xr.V3(acc.Min[0], acc.Min[1], acc.Min[2])
			hi := xr.V3(acc.Max[0], acc.Max[1], acc.Max[2])
			if !bounded {
				minV, maxV, bounded = lo, hi, true
				continue
			}
			minV = xr.V3(min(minV.X, lo.X), min(minV.Y, lo.Y), min(minV.Z, lo.Z))
			maxV = xr.V3(max(maxV.X, hi.X), max(maxV.Y, hi.Y), max(maxV.Z, hi.Z))
		}
	}

	m := UnitModel(name)
	if bounded {
		m.Min, m.Max = minV, maxV
	}
	m.Source = source
	m.Meshes = len(doc.Meshes)
	m.Nodes = len(doc.Nodes)
	return m
}
