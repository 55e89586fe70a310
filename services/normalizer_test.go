package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var priceComparer = cmp.Comparer(func(a, b *models.Price) bool {
	return a.Key() == b.Key()
})

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func newNormalizer() *Normalizer {
	return NewNormalizer(utils.NewNopLogger())
}

func TestParseAvailabilitySeatmapPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"seatmaps wins", `{"seatmaps":["a","b"],"seatMapId":"c","seatMapIds":["d"]}`, []string{"a", "b"}},
		{"single id", `{"seatMapId":42,"seatMapIds":["d"]}`, []string{"42"}},
		{"id list", `{"seatMapIds":["d","e"]}`, []string{"d", "e"}},
		{"none", `{"eventName":"Game"}`, []string{}},
		{"null seatmaps falls through", `{"seatmaps":null,"seatMapId":"x"}`, []string{"x"}},
	}
	n := newNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ParseAvailability(decode(t, tt.body))
			require.Equal(t, tt.want, got.SeatmapIDs)
		})
	}
}

func TestParseAvailabilityEventInfo(t *testing.T) {
	got := newNormalizer().ParseAvailability(decode(t, `{
		"eventId": 9573829,
		"eventName": "Mudcats vs. Pelicans",
		"venue": "Five County Stadium",
		"seatMapId": "sm-1"
	}`))

	want := models.EventInfo{
		EventID:   models.Str("9573829"),
		EventName: models.Str("Mudcats vs. Pelicans"),
		Venue:     models.Str("Five County Stadium"),
	}
	if diff := cmp.Diff(want, got.EventInfo); diff != "" {
		t.Fatalf("event info mismatch (-want +got):\n%s", diff)
	}
	require.JSONEq(t, `{"eventId":9573829,"eventName":"Mudcats vs. Pelicans","venue":"Five County Stadium","seatMapId":"sm-1"}`, string(got.RawData))
}

func TestParseAvailabilityNonObject(t *testing.T) {
	got := newNormalizer().ParseAvailability(decode(t, `["not", "an", "object"]`))
	require.Empty(t, got.SeatmapIDs)
	require.NotNil(t, got.SeatmapIDs)
	require.Equal(t, models.EventInfo{}, got.EventInfo)
}

func TestParseSeatmapXML(t *testing.T) {
	xml := `<?xml version="1.0"?>
<seatmap event="1">
  <section name="A">
    <seat id="s1" section="A" row="1" number="1" price="63.54" status="available"/>
    <seat id="s2" section="A" row="1" number="2" price="63.54" status="sold"/>
  </section>
  <seat id="s3" number="9"/>
</seatmap>`

	got := newNormalizer().ParseSeatmapXML(xml)
	want := []models.Seat{
		{ID: models.Str("s1"), Section: models.Str("A"), Row: models.Str("1"), SeatNumber: models.Str("1"), Price: models.NewStringPrice("63.54"), Status: "available", Available: true},
		{ID: models.Str("s2"), Section: models.Str("A"), Row: models.Str("1"), SeatNumber: models.Str("2"), Price: models.NewStringPrice("63.54"), Status: "sold", Available: false},
		{ID: models.Str("s3"), SeatNumber: models.Str("9"), Status: models.StatusUnknown, Available: false},
	}
	if diff := cmp.Diff(want, got, priceComparer); diff != "" {
		t.Fatalf("seats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSeatmapXMLDeclaredEncoding(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<r><seat id=\"1\" section=\"Caf\xe9\" status=\"available\"/><seat id=\"2\"/></r>"

	seats := newNormalizer().ParseSeatmapXML(doc)
	require.Len(t, seats, 2)
	require.Equal(t, "Café", models.Deref(seats[0].Section, ""))
	require.True(t, seats[0].Available)
	require.Equal(t, "2", models.Deref(seats[1].ID, ""))
}

func TestParseSeatmapXMLInternalEntities(t *testing.T) {
	doc := `<!DOCTYPE r [<!ENTITY e "x"> <!ENTITY sec 'Upper'>]><r><seat id="&e;" section="&sec; 1"/></r>`

	seats := newNormalizer().ParseSeatmapXML(doc)
	require.Len(t, seats, 1)
	require.Equal(t, "x", models.Deref(seats[0].ID, ""))
	require.Equal(t, "Upper 1", models.Deref(seats[0].Section, ""))

	undeclared := `<!DOCTYPE r [<!ENTITY e "x">]><r><seat id="&other;"/></r>`
	require.Empty(t, newNormalizer().ParseSeatmapXML(undeclared))
}

func TestParseSeatmapJSONSectionIsText(t *testing.T) {
	body := decode(t, `{"seats":[{"id":"a","section":5},{"id":"b","section":"5"}]}`)

	seats := newNormalizer().ParseSeatmapJSON(body)
	require.Len(t, seats, 2)
	require.Equal(t, "5", models.Deref(seats[0].Section, ""))
	require.Equal(t, "5", models.Deref(seats[1].Section, ""))

	summary := Summarize(seats)
	require.Equal(t, models.SectionCounts{{Name: "5", Count: 2}}, summary.Sections)
}

func TestParseSeatmapXMLCountAndOrder(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		var sb strings.Builder
		sb.WriteString("<root><block>")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, `<seat id="%d" status="available"/>`, i)
		}
		sb.WriteString("</block></root>")

		seats := newNormalizer().ParseSeatmapXML(sb.String())
		require.Len(t, seats, n)
		for i, s := range seats {
			require.Equal(t, fmt.Sprint(i), *s.ID)
		}
	}
}

func TestParseSeatmapXMLStatusIsLiteral(t *testing.T) {
	seats := newNormalizer().ParseSeatmapXML(`<m><seat status="Available"/><seat status="available"/></m>`)
	require.False(t, seats[0].Available)
	require.True(t, seats[1].Available)
}

func TestParseSeatmapXMLMalformed(t *testing.T) {
	for _, body := range []string{
		`<seatmap><seat id="1">`,
		`<seatmap><seat id="1"/></other>`,
		`<a/><b/>`,
		`<a/>trailing`,
		`<seat id="1"`,
		`<`,
	} {
		seats := newNormalizer().ParseSeatmapXML(body)
		require.NotNil(t, seats, body)
		require.Empty(t, seats, body)
	}
}

func TestParseSeatmapXMLRootSeatNotSelected(t *testing.T) {
	seats := newNormalizer().ParseSeatmapXML(`<seat id="root"><seat id="child"/></seat>`)
	require.Len(t, seats, 1)
	require.Equal(t, "child", *seats[0].ID)
}

func TestParseSeatmapJSONFieldPrecedence(t *testing.T) {
	body := `{"seats": [
		{"id": "a", "seatId": "x", "section": "101", "row": "C", "seatNumber": "5", "number": "99", "price": 63.54, "amount": 10, "available": false, "status": "held"},
		{"seatId": 77, "number": 12, "amount": "$20.00"},
		{"id": "", "seatId": "fallback", "price": 0, "amount": 5, "available": null},
		"not an object"
	]}`

	got := newNormalizer().ParseSeatmapJSON(decode(t, body))
	want := []models.Seat{
		{ID: models.Str("a"), Section: models.Str("101"), Row: models.Str("C"), SeatNumber: models.Str("5"), Price: models.PriceFromJSON(json.Number("63.54")), Status: "held", Available: false},
		{ID: models.Str("77"), SeatNumber: models.Str("12"), Price: models.NewStringPrice("$20.00"), Status: models.StatusUnknown, Available: true},
		{ID: models.Str("fallback"), Price: models.PriceFromJSON(json.Number("0")), Status: models.StatusUnknown, Available: false},
	}
	if diff := cmp.Diff(want, got, priceComparer); diff != "" {
		t.Fatalf("seats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSeatmapJSONSeatsBeatsInventory(t *testing.T) {
	n := newNormalizer()

	got := n.ParseSeatmapJSON(decode(t, `{"seats":[{"id":"s"}],"inventory":[{"id":"i1"},{"id":"i2"}]}`))
	require.Len(t, got, 1)
	require.Equal(t, "s", *got[0].ID)

	got = n.ParseSeatmapJSON(decode(t, `{"seats":[],"inventory":[{"id":"i1"},{"id":"i2"}]}`))
	require.Len(t, got, 2)
	require.Equal(t, "i1", *got[0].ID)

	got = n.ParseSeatmapJSON(decode(t, `{"inventory":[{"id":"i1"}]}`))
	require.Len(t, got, 1)

	got = n.ParseSeatmapJSON(decode(t, `{"other":[{"id":"i1"}]}`))
	require.Empty(t, got)

	got = n.ParseSeatmapJSON(decode(t, `[{"id":"i1"}]`))
	require.Empty(t, got)
}

func TestAvailabilityDefaultsDifferPerFormat(t *testing.T) {
	n := newNormalizer()

	fromJSON := n.ParseSeatmapJSON(decode(t, `{"seats":[{"id":"1"}]}`))
	require.True(t, fromJSON[0].Available)
	require.Equal(t, models.StatusUnknown, fromJSON[0].Status)

	fromXML := n.ParseSeatmapXML(`<m><seat id="1"/></m>`)
	require.False(t, fromXML[0].Available)
	require.Equal(t, models.StatusUnknown, fromXML[0].Status)
}

func TestNormalizeConcatenatesInArrivalOrder(t *testing.T) {
	records := []models.CaptureRecord{
		models.NewSeatmapXMLCapture("x1", `<m><seat id="x1a" status="available"/><seat id="x1b"/></m>`),
		models.NewAvailabilityCapture("a1", decode(t, `{"eventId":"1","seatMapId":"sm"}`)),
		models.NewSeatmapJSONCapture("j1", decode(t, `{"seats":[{"id":"j1a"},{"id":"j1b","available":false}]}`)),
		models.NewSeatmapXMLCapture("bad", `<m><seat id="lost">`),
		models.NewSeatmapJSONCapture("j1", decode(t, `{"seats":[{"id":"j1a"},{"id":"j1b","available":false}]}`)),
	}

	result := newNormalizer().Normalize(records)

	ids := make([]string, len(result.Seats))
	for i, s := range result.Seats {
		ids[i] = *s.ID
	}
	require.Equal(t, []string{"x1a", "x1b", "j1a", "j1b", "j1a", "j1b"}, ids)

	require.Len(t, result.Availability, 1)
	require.Equal(t, "a1", result.Availability[0].SourceURL)
	require.Equal(t, []string{"sm"}, result.Availability[0].SeatmapIDs)

	require.Equal(t, 6, result.Summary.TotalSeats)
	require.Equal(t, 3, result.Summary.AvailableSeats)
}

func TestNormalizeEmpty(t *testing.T) {
	result := newNormalizer().Normalize(nil)
	b, err := json.Marshal(result)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"availability": [],
		"seats": [],
		"summary": {"total_seats":0,"available_seats":0,"unavailable_seats":0,"price_ranges":[],"sections":{}}
	}`, string(b))
}
