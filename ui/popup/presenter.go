package popup

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"

	"thermal-scene/pkg/geometry"
)

const (
	padding  = 8
	lineGap  = 4
	fadeTime = 150 * time.Millisecond
)

var (
	bgColor     = color.NRGBA{R: 0x20, G: 0x24, B: 0x28, A: 0xE0}
	borderColor = color.NRGBA{R: 0x58, G: 0xA6, B: 0xFF, A: 0xFF}
	titleColor  = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	lineColor   = color.NRGBA{R: 0xC8, G: 0xD2, B: 0xDC, A: 0xFF}
)

// Presenter owns the floating popup inside an absolutely-positioned overlay
// container. Open fades in; Hide fades out and removes the popup from the
// render path only once the fade completes. All methods must be called from
// the UI thread.
type Presenter struct {
	root *fyne.Container // without-layout overlay child
	bg   *fynecanvas.Rectangle

	anchoredID string
	visible    bool
	fade       *fyne.Animation
	size       geometry.Size
}

// NewPresenter creates a hidden presenter. Root() must be added to an overlay
// stacked over the scene widget.
func NewPresenter() *Presenter {
	bg := fynecanvas.NewRectangle(bgColor)
	bg.StrokeColor = borderColor
	bg.StrokeWidth = 1
	bg.CornerRadius = 4

	p := &Presenter{
		root: container.NewWithoutLayout(bg),
		bg:   bg,
	}
	p.root.Hide()
	return p
}

// Root returns the popup's canvas object.
func (p *Presenter) Root() fyne.CanvasObject {
	return p.root
}

// AnchoredID returns the point id the popup is currently anchored to, or ""
// when hidden. Fetch completions check this before touching the popup, so a
// stale response never reopens it for an inactive id.
func (p *Presenter) AnchoredID() string {
	if !p.visible {
		return ""
	}
	return p.anchoredID
}

// Show opens (or re-anchors) the popup with the given content near the
// pointer. Showing while a fade-out is in progress restarts the fade-in.
func (p *Presenter) Show(id string, content Content, pointer geometry.Point2D, viewport geometry.Size) {
	p.anchoredID = id
	p.setContent(content)
	p.moveTo(pointer, viewport)

	if !p.visible {
		p.visible = true
		p.root.Show()
		p.startFade(0, 1, nil)
	}
}

// SetContent replaces the popup's content if it is still anchored to id, and
// repositions it since the box size can change with the content.
func (p *Presenter) SetContent(id string, content Content, pointer geometry.Point2D, viewport geometry.Size) {
	if !p.visible || p.anchoredID != id {
		return
	}
	p.setContent(content)
	p.moveTo(pointer, viewport)
}

// Reposition moves the visible popup to follow the pointer.
func (p *Presenter) Reposition(pointer geometry.Point2D, viewport geometry.Size) {
	if !p.visible {
		return
	}
	p.moveTo(pointer, viewport)
}

// Hide fades the popup out and removes it from the render path afterwards.
func (p *Presenter) Hide() {
	if !p.visible {
		return
	}
	p.visible = false
	p.anchoredID = ""
	p.startFade(1, 0, func() {
		p.root.Hide()
	})
}

// setContent rebuilds the text objects and remeasures the box.
func (p *Presenter) setContent(content Content) {
	objects := []fyne.CanvasObject{p.bg}

	title := fynecanvas.NewText(content.Title, titleColor)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = theme.TextSize()
	objects = append(objects, title)

	texts := []*fynecanvas.Text{title}
	for _, line := range content.Lines {
		txt := fynecanvas.NewText(line, lineColor)
		txt.TextSize = theme.TextSize() - 2
		objects = append(objects, txt)
		texts = append(texts, txt)
	}

	var width, height float32
	height = padding
	for _, txt := range texts {
		min := txt.MinSize()
		txt.Move(fyne.NewPos(padding, height))
		txt.Resize(min)
		if min.Width > width {
			width = min.Width
		}
		height += min.Height + lineGap
	}
	width += 2 * padding
	height += padding - lineGap

	p.bg.Resize(fyne.NewSize(width, height))
	p.size = geometry.NewSize(float64(width), float64(height))

	p.root.Objects = objects
	p.root.Resize(fyne.NewSize(width, height))
	p.root.Refresh()
}

// moveTo applies the placement algorithm for the current box size.
func (p *Presenter) moveTo(pointer geometry.Point2D, viewport geometry.Size) {
	pos := Place(p.size, pointer, viewport)
	p.root.Move(fyne.NewPos(float32(pos.X), float32(pos.Y)))
}

// startFade animates the popup's opacity between two values, superseding any
// fade already running.
func (p *Presenter) startFade(from, to float32, done func()) {
	if p.fade != nil {
		p.fade.Stop()
	}
	anim := fyne.NewAnimation(fadeTime, func(t float32) {
		alpha := from + (to-from)*t
		p.applyAlpha(alpha)
		if t >= 1 {
			p.fade = nil
			if done != nil {
				done()
			}
		}
	})
	anim.Curve = fyne.AnimationLinear
	p.fade = anim
	anim.Start()
}

// applyAlpha scales every popup color's alpha channel.
func (p *Presenter) applyAlpha(alpha float32) {
	p.bg.FillColor = scaleAlpha(bgColor, alpha)
	p.bg.StrokeColor = scaleAlpha(borderColor, alpha)
	for _, obj := range p.root.Objects {
		if txt, ok := obj.(*fynecanvas.Text); ok {
			base := lineColor
			if txt.TextStyle.Bold {
				base = titleColor
			}
			txt.Color = scaleAlpha(base, alpha)
		}
	}
	p.root.Refresh()
}

func scaleAlpha(c color.NRGBA, alpha float32) color.NRGBA {
	c.A = uint8(float32(c.A) * alpha)
	return c
}
