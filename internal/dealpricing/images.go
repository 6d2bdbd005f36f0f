package dealpricing

import "strings"

// PlaceholderImage is used whenever a product has no usable image.
const PlaceholderImage = "/placeholder.svg"

// NormalizeImages merges a primary image with a gallery. The primary image
// always comes first, duplicates keep their first position and the result is
// never empty.
func NormalizeImages(primary string, gallery []string) []string {
	return normalizeImages(primary, gallery, PlaceholderImage)
}

func normalizeImages(primary string, gallery []string, placeholder string) []string {
	candidates := make([]string, 0, len(gallery)+1)
	if p := strings.TrimSpace(primary); p != "" {
		candidates = append(candidates, p)
	}
	for _, g := range gallery {
		if g = strings.TrimSpace(g); g != "" {
			candidates = append(candidates, g)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	if len(out) == 0 {
		if placeholder == "" {
			placeholder = PlaceholderImage
		}
		return []string{placeholder}
	}
	return out
}
