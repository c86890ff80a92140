package internal

// ReconstructPath follows previous links back from current and returns the
// chain in start-to-current order. previous reports false at the start.
func ReconstructPath[NodeType any](
	current NodeType,
	previous func(NodeType) (NodeType, bool),
) []NodeType {
	path := []NodeType{current}
	for {
		previousNode, exists := previous(current)
		if !exists {
			break
		}
		path = append(path, previousNode)
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
