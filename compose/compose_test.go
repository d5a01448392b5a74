package compose

import (
	"errors"
	"testing"

	"github.com/poiesic/answerdesk/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agencyMap map[string]core.Agency

func (m agencyMap) Agency(name string) (core.Agency, bool) {
	a, ok := m[name]
	return a, ok
}

func TestAgencyLine(t *testing.T) {
	tests := []struct {
		name   string
		agency core.Agency
		want   string
	}{
		{"phone and website", core.Agency{Name: "Tax Office", Tel: "126", Paid: "(paid)", Website: "tax.example"}, "※ Tax Office(126(paid), tax.example)"},
		{"phone only", core.Agency{Name: "Tax Office", Tel: "126"}, "※ Tax Office(126)"},
		{"paid text only", core.Agency{Name: "Hotline", Paid: "toll"}, "※ Hotline(toll)"},
		{"website only", core.Agency{Name: "Portal", Website: "portal.example"}, "※ Portal(portal.example)"},
		{"name only", core.Agency{Name: "Counter"}, "※ Counter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgencyLine(tt.agency))
		})
	}
}

func TestPreview(t *testing.T) {
	agencies := agencyMap{
		"Housing Office": {Name: "Housing Office", Tel: "120", Website: "housing.example"},
		"Tax Office":     {Name: "Tax Office", Tel: "126"},
	}

	t.Run("conjunction body and agencies", func(t *testing.T) {
		rec := &core.AnswerRecord{
			MainText: `First line.\nSecond line.`,
			Agency1:  "Housing Office",
			Agency2:  "Tax Office",
		}
		got := Preview(rec, "Furthermore, ", agencies)
		assert.Equal(t, "Furthermore, First line.\nSecond line.\n※ Housing Office(120, housing.example)\n※ Tax Office(126)", got)
	})

	t.Run("unknown agency omitted", func(t *testing.T) {
		rec := &core.AnswerRecord{MainText: "Body.", Agency1: "Nobody", Agency2: "Tax Office"}
		assert.Equal(t, "Body.\n※ Tax Office(126)", Preview(rec, "", agencies))
	})

	t.Run("trimmed", func(t *testing.T) {
		rec := &core.AnswerRecord{MainText: "  Body.\n\n"}
		assert.Equal(t, "Body.", Preview(rec, "", nil))
	})

	t.Run("nil record", func(t *testing.T) {
		assert.Equal(t, "", Preview(nil, "Also, ", agencies))
	})
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "Hello.\n\nBody\nmore.\n\nBye.", Join("  Hello. ", "", `Body\nmore.`, "   ", "Bye.\n"))
	assert.Equal(t, "", Join())
	assert.Equal(t, "", Join("", " "))
}

func TestSelection(t *testing.T) {
	t.Run("set get clear", func(t *testing.T) {
		sel := NewSelection()
		defer sel.Close()

		rec := &core.AnswerRecord{ID: 7, Code: "H-007"}
		require.NoError(t, sel.Set(SlotS2, EntryFromRecord(rec, "second")))
		entry, ok := sel.Get(SlotS2)
		require.True(t, ok)
		assert.Equal(t, Entry{ID: 7, Code: "H-007", Text: "second"}, entry)
		assert.False(t, sel.Has(SlotS1))

		sel.Clear(SlotS2)
		assert.False(t, sel.Has(SlotS2))
	})

	t.Run("unknown slot", func(t *testing.T) {
		sel := NewSelection()
		defer sel.Close()

		err := sel.Set("S4", Entry{})
		assert.True(t, errors.Is(err, ErrUnknownSlot))
		sel.Clear("S4")

		_, err = ParseSlot("s1")
		assert.True(t, errors.Is(err, ErrUnknownSlot))
		slot, err := ParseSlot("S3")
		require.NoError(t, err)
		assert.Equal(t, SlotS3, slot)
	})

	t.Run("texts follow slot order", func(t *testing.T) {
		sel := NewSelection()
		defer sel.Close()

		require.NoError(t, sel.Set(SlotS3, Entry{Text: "third"}))
		require.NoError(t, sel.Set(SlotS1, Entry{Text: "first"}))
		assert.Equal(t, []string{"first", "third"}, sel.Texts())

		sel.ClearAll()
		assert.Empty(t, sel.Texts())
	})

	t.Run("changes are published", func(t *testing.T) {
		sel := NewSelection()
		defer sel.Close()
		events, cancel := sel.Events()
		defer cancel()

		require.NoError(t, sel.Set(SlotS1, Entry{Text: "x"}))
		assert.Equal(t, SlotS1, <-events)
		sel.Clear(SlotS1)
		assert.Equal(t, SlotS1, <-events)

		sel.ClearAll()
		assert.Equal(t, SlotS1, <-events)
		assert.Equal(t, SlotS2, <-events)
		assert.Equal(t, SlotS3, <-events)
	})
}

func TestAssemble(t *testing.T) {
	sel := NewSelection()
	defer sel.Close()
	require.NoError(t, sel.Set(SlotS1, Entry{Text: "Answer one."}))
	require.NoError(t, sel.Set(SlotS3, Entry{Text: `Answer\nthree.`}))

	got := Assemble("Thank you for your inquiry.", sel, "Kind regards.")
	assert.Equal(t, "Thank you for your inquiry.\n\nAnswer one.\n\nAnswer\nthree.\n\nKind regards.", got)

	assert.Equal(t, "Answer one.\n\nAnswer\nthree.", Assemble("", sel, " "))
	assert.Equal(t, "Hi.", Assemble("Hi.", nil, ""))
}
