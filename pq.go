package gridastar

// openItem is the heap slot of one open entry.
// TotalCost is captured on insertion so a caller mutating the entry cannot break heap order.
type openItem struct {
	Entry        Entry
	TotalCost    float64
	Sequence     uint64
	IndexInQueue int
}

// openQueue is a min-heap on total cost; equal costs fall back to discovery order.
type openQueue []*openItem

func (queue openQueue) Len() int { return len(queue) }
func (queue openQueue) Less(i, j int) bool {
	if queue[i].TotalCost != queue[j].TotalCost {
		return queue[i].TotalCost < queue[j].TotalCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue openQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *openQueue) Push(x any) {
	item := x.(*openItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *openQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
