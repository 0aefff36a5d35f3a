// Package catalog reglas del árbol de productos (padre / variantes).
package catalog

// ChildrenFunc devuelve los IDs hijos directos de un producto.
type ChildrenFunc func(parentID string) ([]string, error)

// CollectSubtree devuelve rootID seguido de todos sus descendientes (recorrido por niveles).
// Un ID ya visitado no se vuelve a expandir, así un ciclo en los datos no cuelga el recorrido.
func CollectSubtree(rootID string, children ChildrenFunc) ([]string, error) {
	seen := map[string]bool{rootID: true}
	out := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		kids, err := children(id)
		if err != nil {
			return nil, err
		}
		for _, k := range kids {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
			queue = append(queue, k)
		}
	}
	return out, nil
}
