package world

import "fmt"

// Registry owns every resident chunk. Entries are only ever added.
// It is not safe for concurrent use.
type Registry struct {
	chunks map[ChunkCoord]ResidentChunk
}

func NewRegistry() *Registry {
	return &Registry{chunks: make(map[ChunkCoord]ResidentChunk, 64)}
}

func (r *Registry) Get(c ChunkCoord) (ResidentChunk, bool) {
	rc, ok := r.chunks[c]
	return rc, ok
}

// Set registers chunk at c. A second Set for the same coordinate is a
// caller bug and panics.
func (r *Registry) Set(c ChunkCoord, chunk ResidentChunk) {
	if _, ok := r.chunks[c]; ok {
		panic(fmt.Sprintf("world: chunk %s is already resident", c))
	}
	r.chunks[c] = chunk
}

func (r *Registry) Len() int {
	return len(r.chunks)
}

// List returns all resident chunks ordered by coordinate.
func (r *Registry) List() []ResidentChunk {
	coords := make([]ChunkCoord, 0, len(r.chunks))
	for c := range r.chunks {
		coords = append(coords, c)
	}
	SortCoords(coords)
	out := make([]ResidentChunk, 0, len(coords))
	for _, c := range coords {
		out = append(out, r.chunks[c])
	}
	return out
}
