package gallery

import "github.com/samber/lo"

// groupDerivatives associates compressed derivatives with their source
// image, strictly by OriginalImageID equality. A derivative whose source is
// absent from the collection heads a group of its own. Group order follows
// the input order.
func groupDerivatives(images []Image) []Group {
	byID := lo.KeyBy(images, func(img Image) string { return img.ID })

	groups := make([]Group, 0, len(images))
	index := make(map[string]int, len(images))

	for _, img := range images {
		if img.OriginalImageID != "" {
			if _, ok := byID[img.OriginalImageID]; ok {
				continue // attached to its source below
			}
		}
		index[img.ID] = len(groups)
		groups = append(groups, Group{Original: img})
	}

	for _, img := range images {
		if img.OriginalImageID == "" {
			continue
		}
		if _, ok := byID[img.OriginalImageID]; !ok {
			continue // already heads its own group
		}
		i, ok := index[img.OriginalImageID]
		if !ok {
			// The source is itself an attached derivative. Chains are not
			// expected from the backend, keep the record visible instead of
			// dropping it.
			index[img.ID] = len(groups)
			groups = append(groups, Group{Original: img})
			continue
		}
		groups[i].Derivatives = append(groups[i].Derivatives, img)
	}

	return groups
}
