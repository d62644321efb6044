package amqp

import "testing"

func TestRecordAppendedMessageRoundTrip(t *testing.T) {
	msg := NewRecordAppendedMessage(KindIncome,
		[]string{"2025-03-01", "Riya", "Haircut", "500.00", ""}, "tok-1")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := RecordAppendedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindIncome || got.Token != "tok-1" || len(got.Fields) != 5 {
		t.Fatalf("round trip: %+v", got)
	}
	if got.Fields[1] != "Riya" {
		t.Fatalf("fields: %+v", got.Fields)
	}
}

func TestRecordAppendedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := RecordAppendedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
