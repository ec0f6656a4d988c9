package neighbor

// Neighbors is the list of neighbors of one atom, with the distance
// to each of them in the same order.
type Neighbors struct {
	Index []int
	Dist  []float64
}

// Len returns the number of neighbors.
func (N Neighbors) Len() int { return len(N.Index) }

// Adjacency builds, for each of the natoms atoms, the list of its neighbors
// from the pairs given. By default each pair is added to the lists of both of
// its atoms. If half is given and true, a pair (I, J) is added only to the
// list of I, so an atom only "sees" the neighbors with a larger index than
// its own.
// Lists are sorted by neighbor index as long as the pairs are sorted by I
// and then J, which is how Search returns them.
func Adjacency(pairs []Pair, natoms int, half ...bool) []Neighbors {
	h := len(half) > 0 && half[0]
	counts := make([]int, natoms)
	for _, p := range pairs {
		counts[p.I]++
		if !h {
			counts[p.J]++
		}
	}
	ret := make([]Neighbors, natoms)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		ret[i] = Neighbors{Index: make([]int, 0, c), Dist: make([]float64, 0, c)}
	}
	//Pairs are sorted by I, so for atom k all the pairs where k is J come
	//before those where k is I. Appending in that order keeps lists sorted.
	if !h {
		for _, p := range pairs {
			ret[p.J].Index = append(ret[p.J].Index, p.I)
			ret[p.J].Dist = append(ret[p.J].Dist, p.D)
		}
	}
	for _, p := range pairs {
		ret[p.I].Index = append(ret[p.I].Index, p.J)
		ret[p.I].Dist = append(ret[p.I].Dist, p.D)
	}
	return ret
}
