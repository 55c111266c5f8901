package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/segparse/engine"
	"github.com/revelaction/segparse/engine/rule"
	"github.com/revelaction/segparse/markup"
	sent "github.com/revelaction/segparse/sentence"
)

func newRuleEngine() (engine.Engine, error) {
	e, err := rule.New()
	if err != nil {
		return nil, err
	}
	return e, nil
}

func texts(n int) []string {
	t := make([]string, n)
	for i := range t {
		t[i] = fmt.Sprintf(`<drug id="%d">Erlotinib</drug> is a common treatment for <cancer id="c">lung</cancer> cancer. Patient %d responded well.`, i, i)
	}
	return t
}

func TestPoolParse(t *testing.T) {
	pool, err := NewPool(3, newRuleEngine)
	require.NoError(t, err)
	defer pool.Close()
	assert.Equal(t, 3, pool.Size())

	want := sent.NewCorpus(texts(20)...)
	require.NoError(t, newRuleParser(t).Parse(context.Background(), want))

	got := sent.NewCorpus(texts(20)...)
	require.NoError(t, pool.Parse(context.Background(), got))

	assert.Equal(t, want.Docs, got.Docs)

	assert.ErrorIs(t, pool.Parse(context.Background(), got), ErrAlreadyParsed)
}

func TestPoolParseError(t *testing.T) {
	pool, err := NewPool(2, newRuleEngine)
	require.NoError(t, err)
	defer pool.Close()

	tx := texts(10)
	tx[6] = `<drug id="6">Erlotinib`
	c := sent.NewCorpus(tx...)

	err = pool.Parse(context.Background(), c)
	var me *markup.MarkupError
	require.True(t, errors.As(err, &me))

	for _, d := range c.Docs {
		assert.Nil(t, d.Sentences)
	}
}

func TestNewPoolEngineError(t *testing.T) {
	calls := 0
	_, err := NewPool(3, func() (engine.Engine, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("no model")
		}
		return &fakeEngine{}, nil
	})
	assert.ErrorContains(t, err, "no model")
}
