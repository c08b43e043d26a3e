// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/glres"
	"github.com/gogpu/glres/backend"
)

// RenderTarget is a single-layer view of a texture level usable as a
// framebuffer attachment. It stays valid until the texture's image is
// released.
type RenderTarget struct {
	image  *Image
	view   backend.View
	level  int
	layer  int
	format backend.FormatID
}

// Image returns the image the view was created from.
func (rt *RenderTarget) Image() *Image { return rt.image }

// View returns the native view.
func (rt *RenderTarget) View() backend.View { return rt.view }

// Level returns the GL level of the view.
func (rt *RenderTarget) Level() int { return rt.level }

// NativeLevel returns the level of the view inside the native image.
func (rt *RenderTarget) NativeLevel() int { return rt.image.toNativeLevel(rt.level) }

// Layer returns the layer or cube face of the view.
func (rt *RenderTarget) Layer() int { return rt.layer }

// Format returns the actual format of the view.
func (rt *RenderTarget) Format() backend.FormatID { return rt.format }

// renderTargetCache holds single-layer render targets indexed by selector,
// GL level and layer.
type renderTargetCache [selectorCount][][]*RenderTarget

func (c *renderTargetCache) lookup(sel Selector, level, layer int) *RenderTarget {
	levels := c[sel]
	if level >= len(levels) || layer >= len(levels[level]) {
		return nil
	}
	return levels[level][layer]
}

func (c *renderTargetCache) count() int {
	n := 0
	for _, levels := range c {
		for _, layers := range levels {
			n += len(layers)
		}
	}
	return n
}

// release destroys every cached view.
func (c *renderTargetCache) release() {
	for sel := range c {
		for _, layers := range c[sel] {
			for _, rt := range layers {
				rt.view.Destroy()
			}
		}
		c[sel] = nil
	}
}

// renderTargetLayers resolves index against the texture type. It returns
// the first layer, the number of layers requested and the number of layers
// the image holds.
func (t *Texture) renderTargetLayers(index ImageIndex) (layer, count, imageLayers int, err error) {
	layer, count = index.Layer, index.LayerCount
	if count == 0 {
		count = 1
	}

	switch t.state.typ {
	case Type2D, Type2DMultisample, TypeExternal:
		imageLayers = 1
	case TypeCubeMap:
		imageLayers = CubeFaceCount
	default:
		return 0, 0, 0, fmt.Errorf("%s render targets: %w", t.state.typ, glres.ErrUnsupported)
	}

	if count == EntireLevel {
		layer, count = 0, imageLayers
	}
	if layer < 0 || layer >= imageLayers {
		panic(fmt.Sprintf("texture: render target layer %d outside a %d layer %s image", layer, imageLayers, t.state.typ))
	}
	return layer, count, imageLayers, nil
}

// initSingleLayerRenderTargets creates the views of every layer of level
// unless they already exist.
func (t *Texture) initSingleLayerRenderTargets(sel Selector, level, layerCount int) error {
	levels := t.renderTargets[sel]
	if len(levels) <= level {
		levels = append(levels, make([][]*RenderTarget, level+1-len(levels))...)
		t.renderTargets[sel] = levels
	}
	if len(levels[level]) != 0 {
		return nil
	}

	rts := make([]*RenderTarget, 0, layerCount)
	for layer := range layerCount {
		view, err := t.image.createSingleLevelView(level, layer, t.Label())
		if err != nil {
			for _, rt := range rts {
				rt.view.Destroy()
			}
			return fmt.Errorf("create view of level %d layer %d: %w", level, layer, err)
		}
		rts = append(rts, &RenderTarget{
			image:  t.image,
			view:   view,
			level:  level,
			layer:  layer,
			format: t.image.ActualFormat(),
		})
	}
	levels[level] = rts
	glres.Logger().Debug("texture: render targets created",
		"id", t.id, "level", level, "layers", layerCount)
	return nil
}

func (t *Texture) releaseRenderTargets() {
	if n := t.renderTargets.count(); n > 0 {
		glres.Logger().Debug("texture: render targets released", "id", t.id, "count", n)
	}
	t.renderTargets.release()
}
