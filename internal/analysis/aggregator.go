package analysis

import (
	"sort"
	"sync"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// Partition selects the grouping key of an aggregation
type Partition int

const (
	// PartitionLine groups records by line only
	PartitionLine Partition = iota
	// PartitionLineBucket groups records by line and time-of-day bucket
	PartitionLineBucket
)

type groupKey struct {
	lineID int
	bucket domain.TimeOfDayBucket
}

func (p Partition) key(rec domain.RidershipRecord) groupKey {
	if p == PartitionLineBucket {
		return groupKey{lineID: rec.LineID, bucket: domain.BucketForHour(rec.Hour)}
	}
	return groupKey{lineID: rec.LineID}
}

// accumulator is a partial reduction; merging is associative and commutative
type accumulator struct {
	ratioSum   float64
	ratioCount int
	boardings  int
	alightings int
	records    int
}

func (a *accumulator) add(rec domain.RidershipRecord) {
	a.records++
	a.boardings += rec.Boardings
	a.alightings += rec.Alightings
	if ratio, ok := rec.OccupancyRatio(); ok {
		a.ratioSum += ratio
		a.ratioCount++
	}
}

func (a *accumulator) merge(other accumulator) {
	a.ratioSum += other.ratioSum
	a.ratioCount += other.ratioCount
	a.boardings += other.boardings
	a.alightings += other.alightings
	a.records += other.records
}

type partial map[groupKey]*accumulator

func reduce(records []domain.RidershipRecord, p Partition) partial {
	acc := make(partial)
	for _, rec := range records {
		k := p.key(rec)
		a, ok := acc[k]
		if !ok {
			a = &accumulator{}
			acc[k] = a
		}
		a.add(rec)
	}
	return acc
}

// Aggregate reduces records into one OccupancyAggregate per distinct partition key.
// Records without capacity count toward totals but not toward the mean ratio, so a key
// whose records all have capacity 0 is still returned, with a nil MeanOccupancyRatio.
// The result is sorted by line id, then bucket in day order.
func Aggregate(records []domain.RidershipRecord, p Partition) []domain.OccupancyAggregate {
	return finalize(reduce(records, p))
}

// AggregateConcurrently shards records across workers and merges the partial sums.
// It returns the same groups as Aggregate; means may differ only by float summation order.
func AggregateConcurrently(records []domain.RidershipRecord, p Partition, workers int) []domain.OccupancyAggregate {
	if workers <= 1 || len(records) < 2*workers {
		return Aggregate(records, p)
	}

	chunk := (len(records) + workers - 1) / workers
	partials := make([]partial, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(records) {
			break
		}
		end := min(start+chunk, len(records))

		wg.Add(1)
		go func(slot int, shard []domain.RidershipRecord) {
			defer wg.Done()
			partials[slot] = reduce(shard, p)
		}(w, records[start:end])
	}
	wg.Wait()

	merged := make(partial)
	for _, part := range partials {
		for k, a := range part {
			if dst, ok := merged[k]; ok {
				dst.merge(*a)
				continue
			}
			cp := *a
			merged[k] = &cp
		}
	}
	return finalize(merged)
}

func finalize(acc partial) []domain.OccupancyAggregate {
	out := make([]domain.OccupancyAggregate, 0, len(acc))
	for k, a := range acc {
		agg := domain.OccupancyAggregate{
			LineID:           k.lineID,
			Bucket:           k.bucket,
			TotalBoardings:   a.boardings,
			TotalAlightings:  a.alightings,
			RecordCount:      a.records,
			RatioSampleCount: a.ratioCount,
		}
		if a.ratioCount > 0 {
			mean := a.ratioSum / float64(a.ratioCount)
			agg.MeanOccupancyRatio = &mean
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LineID != out[j].LineID {
			return out[i].LineID < out[j].LineID
		}
		return out[i].Bucket.Order() < out[j].Bucket.Order()
	})
	return out
}

// byLine indexes line-level aggregates by line id
func byLine(aggregates []domain.OccupancyAggregate) map[int]domain.OccupancyAggregate {
	idx := make(map[int]domain.OccupancyAggregate, len(aggregates))
	for _, a := range aggregates {
		if a.Bucket == "" {
			idx[a.LineID] = a
		}
	}
	return idx
}
