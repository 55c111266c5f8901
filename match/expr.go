package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// entityPrefix marks an entity item in an expression: "@drug" or "@drug:1".
const entityPrefix = "@"

// universal POS tags; an argument equal to one of them is a Pos item
var posTags = map[string]bool{
	"ADJ": true, "ADP": true, "ADV": true, "AUX": true, "CCONJ": true,
	"DET": true, "INTJ": true, "NOUN": true, "NUM": true, "PART": true,
	"PRON": true, "PROPN": true, "PUNCT": true, "SCONJ": true, "SYM": true,
	"VERB": true, "X": true,
}

// Item is one token condition of an expression. Only one of Lemma, Pos and
// Entity is set by Parse.
type Item struct {
	// Near > 0 chains the item to the previous one: the token must follow
	// the previous matched token by at most Near positions.
	Near int `json:"near,omitempty"`

	// Lemma can hold alternatives ("take|get") or a negation ("!take").
	Lemma string `json:"lemma,omitempty"`

	Pos string `json:"pos,omitempty"`

	// Entity is "type" or "type:id".
	Entity string `json:"entity,omitempty"`
}

func (it Item) negated() bool {
	return strings.HasPrefix(it.Lemma, "!")
}

// EntityRef splits the Entity field into type and source id. ok is false if
// the item has no entity condition.
func (it Item) EntityRef() (entityType, sourceId string, ok bool) {
	if it.Entity == "" {
		return "", "", false
	}
	entityType, sourceId, _ = strings.Cut(it.Entity, ":")
	return entityType, sourceId, true
}

// Expr is a sequence of items. A sentence matches if every item matches.
type Expr []Item

func (e Expr) String() string {
	sl := []string{}
	for _, item := range e {
		if item.Near > 0 {
			sl = append(sl, strconv.Itoa(item.Near))
		}

		switch {
		case item.Lemma != "":
			sl = append(sl, item.Lemma)
		case item.Pos != "":
			sl = append(sl, item.Pos)
		case item.Entity != "":
			sl = append(sl, entityPrefix+item.Entity)
		}
	}

	return strings.Join(sl, " ")
}

// Lemmas returns the unique lemmas usable for an indexed lookup. Negations
// and alternatives are left out; the Matcher checks them on the candidates.
func (e Expr) Lemmas() []string {
	seen := make(map[string]bool)
	var lemmas []string
	for _, item := range e {
		if item.Lemma == "" || item.negated() || strings.Contains(item.Lemma, "|") {
			continue
		}
		if !seen[item.Lemma] {
			seen[item.Lemma] = true
			lemmas = append(lemmas, item.Lemma)
		}
	}
	return lemmas
}

// Entity returns the first entity item of the expression.
func (e Expr) Entity() (Item, bool) {
	for _, item := range e {
		if item.Entity != "" {
			return item, true
		}
	}
	return Item{}, false
}

// Parse converts command line arguments into an Expr.
//
//	aspirin 3 cause @disease     lemma, then "cause" within 3 tokens, and a disease
//	take|get !not NOUN @drug:1   alternatives, negation, POS, entity with id
func Parse(args []string) (Expr, error) {
	var expr Expr
	near := 0
	isLastInt := false

	for idx, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			if idx == 0 {
				return nil, errors.New("first expression argument can not be a number")
			}
			if isLastInt {
				return nil, errors.New("can not parse two consecutive numbers in the expression")
			}
			if n <= 0 {
				return nil, fmt.Errorf("near distance must be positive, got %d", n)
			}

			near = n
			isLastInt = true
			continue
		}

		item := Item{Near: near}
		switch {
		case strings.HasPrefix(arg, entityPrefix):
			ref := strings.TrimPrefix(arg, entityPrefix)
			if ref == "" || strings.HasPrefix(ref, ":") {
				return nil, fmt.Errorf("entity item %q has no type", arg)
			}
			item.Entity = ref
		case posTags[arg]:
			item.Pos = arg
		case arg == "!":
			return nil, errors.New("negation without lemma")
		default:
			item.Lemma = arg
		}

		expr = append(expr, item)
		near = 0
		isLastInt = false
	}

	if isLastInt {
		return nil, errors.New("expression can not end with a number")
	}

	if len(expr) == 0 {
		return nil, errors.New("empty expression")
	}

	return expr, nil
}
