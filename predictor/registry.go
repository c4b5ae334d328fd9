package predictor

// Registry holds the trained models by disease key. It is filled once at
// construction and only read afterwards.
type Registry struct {
	models map[string]*Model
}

// NewRegistry indexes the given models; nil entries are untrained diseases.
func NewRegistry(models ...*Model) *Registry {
	r := &Registry{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if m != nil {
			r.models[m.Disease.Key] = m
		}
	}
	return r
}

func (r *Registry) Get(key string) (*Model, bool) {
	m, ok := r.models[key]
	return m, ok
}
