package target

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decode reads a JSON or YAML document whose root is a mapping.
func Decode(r io.Reader) (*Object, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewObject(), nil
		}
		return nil, fmt.Errorf("failed to parse target object: %w", err)
	}

	v, err := convert(&doc)
	if err != nil {
		return nil, err
	}

	obj, ok := AsObject(v)
	if !ok {
		return nil, fmt.Errorf("target object must be a mapping, got %T", v)
	}
	return obj, nil
}

func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewObject(), nil
		}
		return convert(n.Content[0])

	case yaml.AliasNode:
		return convert(n.Alias)

	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			if _, dup := obj.Get(keyNode.Value); dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
			}
			v, err := convert(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case yaml.ScalarNode:
		return scalar(n)
	}

	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func scalar(n *yaml.Node) (any, error) {
	var err error
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err = n.Decode(&b)
		return b, wrapScalar(n, err)
	case "!!int":
		var i int64
		err = n.Decode(&i)
		return i, wrapScalar(n, err)
	case "!!float":
		var f float64
		err = n.Decode(&f)
		return f, wrapScalar(n, err)
	default:
		return n.Value, nil
	}
}

func wrapScalar(n *yaml.Node, err error) error {
	if err != nil {
		return fmt.Errorf("line %d: invalid value %q: %w", n.Line, n.Value, err)
	}
	return nil
}
