package result

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeKind is the JSON type of a Node.
type NodeKind string

const (
	KindObject NodeKind = "object"
	KindArray  NodeKind = "array"
	KindString NodeKind = "string"
	KindNumber NodeKind = "number"
	KindBool   NodeKind = "bool"
	KindNull   NodeKind = "null"
)

// Node is one value in a JSON document. Object members keep document order.
type Node struct {
	// Label is the member name inside an object, the index inside an array,
	// and empty for the root.
	Label    string
	Kind     NodeKind
	Value    string // scalar literal; empty for objects and arrays
	Children []*Node
}

// IsContainer reports whether the node is an object or array.
func (n *Node) IsContainer() bool {
	return n.Kind == KindObject || n.Kind == KindArray
}

// Summary describes a container's size, e.g. "{3}" or "[2]".
func (n *Node) Summary() string {
	switch n.Kind {
	case KindObject:
		return fmt.Sprintf("{%d}", len(n.Children))
	case KindArray:
		return fmt.Sprintf("[%d]", len(n.Children))
	default:
		return n.Value
	}
}

// BuildTree walks raw with the streaming decoder so object keys keep the
// order they had in the text.
func BuildTree(raw string) (*Node, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return buildNode(dec, "", tok)
}

func buildNode(dec *json.Decoder, label string, tok json.Token) (*Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return buildObject(dec, label)
		case '[':
			return buildArray(dec, label)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return &Node{Label: label, Kind: KindString, Value: v}, nil
	case json.Number:
		return &Node{Label: label, Kind: KindNumber, Value: v.String()}, nil
	case bool:
		return &Node{Label: label, Kind: KindBool, Value: strconv.FormatBool(v)}, nil
	case nil:
		return &Node{Label: label, Kind: KindNull, Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func buildObject(dec *json.Decoder, label string) (*Node, error) {
	node := &Node{Label: label, Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}

		child, err := nextNode(dec, key)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func buildArray(dec *json.Decoder, label string) (*Node, error) {
	node := &Node{Label: label, Kind: KindArray}
	for i := 0; dec.More(); i++ {
		child, err := nextNode(dec, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func nextNode(dec *json.Decoder, label string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return buildNode(dec, label, tok)
}
