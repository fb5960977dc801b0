package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store implementation. It mirrors the semantics of
// the Firebase adapter (JSON-shaped values addressed by path) and backs the
// handler tests.
type Memory struct {
	mu   sync.Mutex
	root map[string]interface{}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{root: make(map[string]interface{})}
}

func (m *Memory) Get(ctx context.Context, path string, v interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := m.rawAt(path)
	if IsNull(raw) {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (m *Memory) Set(ctx context.Context, path string, v interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setValue(path, v)
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodeAt(path)
	target, isMap := node.(map[string]interface{})
	if !ok || !isMap {
		target = make(map[string]interface{})
	}
	for k, v := range fields {
		canonical, err := canonicalize(v)
		if err != nil {
			return err
		}
		if canonical == nil {
			delete(target, k)
		} else {
			target[k] = canonical
		}
	}
	m.putNode(path, target)
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putNode(path, nil)
	return nil
}

func (m *Memory) Push(ctx context.Context, path string, v interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := uuid.NewString()
	if err := m.setValue(path+"/"+key, v); err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) Query(
	ctx context.Context, path, child, value string,
) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]json.RawMessage)
	node, ok := m.nodeAt(path)
	if !ok {
		return results, nil
	}
	children, ok := node.(map[string]interface{})
	if !ok {
		return results, nil
	}

	for key, childNode := range children {
		fieldNode, ok := walk(childNode, splitPath(child))
		if !ok {
			continue
		}
		s, ok := fieldNode.(string)
		if !ok || s != value {
			continue
		}
		raw, err := json.Marshal(childNode)
		if err != nil {
			return nil, err
		}
		results[key] = raw
	}
	return results, nil
}

func (m *Memory) Transact(ctx context.Context, path string, fn TransactFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replacement, err := fn(m.rawAt(path))
	if err != nil {
		return err
	}
	return m.setValue(path, replacement)
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// setValue canonicalizes v through JSON and stores it at path. A nil value
// removes the node, matching Realtime Database semantics.
func (m *Memory) setValue(path string, v interface{}) error {
	canonical, err := canonicalize(v)
	if err != nil {
		return err
	}
	m.putNode(path, canonical)
	return nil
}

// rawAt marshals the node at path, returning "null" when absent.
func (m *Memory) rawAt(path string) json.RawMessage {
	node, ok := m.nodeAt(path)
	if !ok {
		return json.RawMessage("null")
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

func (m *Memory) nodeAt(path string) (interface{}, bool) {
	return walk(m.root, splitPath(path))
}

// putNode sets (or, for nil, removes) the node at path, creating intermediate
// objects as needed.
func (m *Memory) putNode(path string, node interface{}) {
	segments := splitPath(path)
	if len(segments) == 0 {
		if node == nil {
			m.root = make(map[string]interface{})
		} else if obj, ok := node.(map[string]interface{}); ok {
			m.root = obj
		}
		return
	}

	parent := m.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg].(map[string]interface{})
		if !ok {
			if node == nil {
				return
			}
			child = make(map[string]interface{})
			parent[seg] = child
		}
		parent = child
	}

	last := segments[len(segments)-1]
	if node == nil {
		delete(parent, last)
	} else {
		parent[last] = node
	}
}

func walk(node interface{}, segments []string) (interface{}, bool) {
	current := node
	for _, seg := range segments {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// canonicalize round-trips v through JSON so the tree only ever holds
// map[string]interface{}, []interface{}, and JSON scalars.
func canonicalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error canonicalizing value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
