package elastic

// shapeResult strips engine internals from a raw search response before it
// reaches a client: the shard summary and timeout flag at the top level, and
// the source index and mapping type on every hit.
//
// The engine is an external dependency whose failure shapes are not fully
// known, so a response without the expected hits path is passed through
// untouched rather than rejected.
func shapeResult(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}

	delete(raw, "_shards")
	delete(raw, "timed_out")

	hitsWrapper, ok := raw["hits"].(map[string]any)
	if !ok {
		return raw
	}
	hitList, ok := hitsWrapper["hits"].([]any)
	if !ok {
		return raw
	}

	for _, h := range hitList {
		hit, ok := h.(map[string]any)
		if !ok {
			continue
		}
		delete(hit, "_index")
		delete(hit, "_type")
	}
	return raw
}
