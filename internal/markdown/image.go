package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

type image struct {
	src string
	alt string
}

func (img image) markdown() string {
	return "![" + img.alt + "](" + img.src + ")"
}

func imageOf(el *node.Element) (image, bool) {
	src := strings.TrimSpace(el.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(el.AttrOr("data-src", ""))
	}
	if src == "" {
		return image{}, false
	}
	alt := normalizeText(el.AttrOr("alt", ""))
	alt = strings.ReplaceAll(strings.TrimSpace(alt), "]", `\]`)
	return image{src: src, alt: alt}, true
}

// images collects every image under el in document order.
func (w *walker) images(el *node.Element) []image {
	var out []image
	if el.Tag == "img" {
		if img, ok := imageOf(el); ok {
			out = append(out, img)
		}
		return out
	}
	for _, found := range node.FindAll(el, w.skip, func(e *node.Element) bool { return e.Tag == "img" }) {
		if img, ok := imageOf(found); ok {
			out = append(out, img)
		}
	}
	return out
}

func (w *walker) imageGridFragment(el *node.Element, _ Context) fragment {
	imgs := w.images(el)
	if len(imgs) == 0 {
		return fragment{}
	}
	lines := make([]string, len(imgs))
	for i, img := range imgs {
		lines[i] = img.markdown()
	}
	return fragment{text: strings.Join(lines, "\n"), block: true}
}
