package render

import (
	"sync"

	"github.com/hivespace/hivechat/markdown"
)

// ImageRef identifies one zoomable image.
type ImageRef struct {
	MessageID string
	Index     int
	Image     markdown.Image
}

// ZoomRegistry holds the zoom-on-click affordances of rendered messages.
// Registrations are keyed by message ID and replaced wholesale, so
// attaching the same message twice leaves exactly one handler per image.
type ZoomRegistry struct {
	mu     sync.Mutex
	images map[string][]markdown.Image
	order  []string
	open   func(ImageRef)
	gen    uint64
}

// NewZoomRegistry returns a registry that calls open when an image is
// clicked. open may be nil and set later with SetOpener.
func NewZoomRegistry(open func(ImageRef)) *ZoomRegistry {
	return &ZoomRegistry{
		images: make(map[string][]markdown.Image),
		open:   open,
	}
}

func (z *ZoomRegistry) SetOpener(open func(ImageRef)) {
	z.mu.Lock()
	z.open = open
	z.mu.Unlock()
}

// Attach replaces the images registered for id. An empty list detaches.
func (z *ZoomRegistry) Attach(id string, imgs []markdown.Image) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.attachLocked(id, imgs)
}

func (z *ZoomRegistry) attachLocked(id string, imgs []markdown.Image) {
	if len(imgs) == 0 {
		z.detachLocked(id)
		return
	}
	if _, ok := z.images[id]; !ok {
		z.order = append(z.order, id)
	}
	z.images[id] = append([]markdown.Image(nil), imgs...)
}

func (z *ZoomRegistry) Detach(id string) {
	z.mu.Lock()
	z.detachLocked(id)
	z.mu.Unlock()
}

func (z *ZoomRegistry) detachLocked(id string) {
	if _, ok := z.images[id]; !ok {
		return
	}
	delete(z.images, id)
	for i, o := range z.order {
		if o == id {
			z.order = append(z.order[:i], z.order[i+1:]...)
			break
		}
	}
}

// AttachIn is Attach for a message rendered while the registry was at
// generation gen. Once the registry has been reset since, the message is
// gone from the view and AttachIn does nothing and returns false.
func (z *ZoomRegistry) AttachIn(gen uint64, id string, imgs []markdown.Image) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.gen != gen {
		return false
	}
	z.attachLocked(id, imgs)
	return true
}

// Generation counts resets.
func (z *ZoomRegistry) Generation() uint64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.gen
}

// Reset drops every registration, e.g. when the message view is cleared.
func (z *ZoomRegistry) Reset() {
	z.mu.Lock()
	z.images = make(map[string][]markdown.Image)
	z.order = nil
	z.gen++
	z.mu.Unlock()
}

// Images returns the images registered for id.
func (z *ZoomRegistry) Images(id string) []markdown.Image {
	z.mu.Lock()
	defer z.mu.Unlock()
	return append([]markdown.Image(nil), z.images[id]...)
}

// All lists every registered image, messages in first-attach order.
func (z *ZoomRegistry) All() []ImageRef {
	z.mu.Lock()
	defer z.mu.Unlock()
	var out []ImageRef
	for _, id := range z.order {
		for i, img := range z.images[id] {
			out = append(out, ImageRef{MessageID: id, Index: i, Image: img})
		}
	}
	return out
}

// Click opens image index of message id. It reports false when there is no
// such image or no opener.
func (z *ZoomRegistry) Click(id string, index int) bool {
	z.mu.Lock()
	imgs := z.images[id]
	open := z.open
	z.mu.Unlock()
	if open == nil || index < 0 || index >= len(imgs) {
		return false
	}
	open(ImageRef{MessageID: id, Index: index, Image: imgs[index]})
	return true
}
