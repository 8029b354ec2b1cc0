package bucket

// Stats is a point-in-time snapshot of bucket occupancy.
type Stats struct {
	BlockSize      int `json:"block_size"`
	BlockCount     int `json:"block_count"`
	UsedBlocks     int `json:"used_blocks"`
	FreeBlocks     int `json:"free_blocks"`
	LongestFreeRun int `json:"longest_free_run"`
	CapacityBytes  int `json:"capacity_bytes"`
	UsedBytes      int `json:"used_bytes"`
}

// Utilization returns the fraction of blocks in use, from 0 to 1.
func (s Stats) Utilization() float64 {
	if s.BlockCount == 0 {
		return 0
	}
	return float64(s.UsedBlocks) / float64(s.BlockCount)
}

// Stats scans the ledger and reports occupancy. The cost is linear in the
// block count.
func (b *Bucket) Stats() Stats {
	used := b.ledger.Count()
	return Stats{
		BlockSize:      b.blockSize,
		BlockCount:     b.blockCount,
		UsedBlocks:     used,
		FreeBlocks:     b.ledger.Len() - used,
		LongestFreeRun: b.ledger.LongestFreeRun(),
		CapacityBytes:  len(b.arena),
		UsedBytes:      used * b.blockSize,
	}
}
