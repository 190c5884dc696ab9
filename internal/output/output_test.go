package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/chrisdamba/bookrfm/internal/cloudwriter"
	"github.com/chrisdamba/bookrfm/internal/models"
)

func scores() []models.RfmScore {
	last := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	return []models.RfmScore{
		{
			CustomerMetrics: models.CustomerMetrics{CustomerID: "c1", Name: "Ada", LastPurchaseDate: last, PurchaseFrequency: 4, TotalSpent: decimal.RequireFromString("120.50")},
			RecencyScore:    5, FrequencyScore: 5, MonetaryScore: 4, RfmTotal: 14, Segment: models.SegmentChampions,
		},
		{
			CustomerMetrics: models.CustomerMetrics{CustomerID: "c2", Name: "Grace", LastPurchaseDate: last.AddDate(0, -3, 0), PurchaseFrequency: 1, TotalSpent: decimal.RequireFromString("9.99")},
			RecencyScore:    1, FrequencyScore: 2, MonetaryScore: 1, RfmTotal: 4, Segment: models.SegmentAtRisk,
		},
	}
}

type recordingDestination struct {
	keys     []string
	messages []string
	failOn   int
}

func (r *recordingDestination) WriteMessage(topic string, msg []byte) error {
	return r.WriteKeyedMessage(topic, "", msg)
}

func (r *recordingDestination) WriteKeyedMessage(topic, key string, msg []byte) error {
	if r.failOn > 0 && len(r.messages)+1 == r.failOn {
		return errors.New("sink unavailable")
	}
	r.keys = append(r.keys, key)
	r.messages = append(r.messages, topic+" "+string(msg))
	return nil
}

func (r *recordingDestination) Close() error { return nil }

func TestPublishUsesRecordKeys(t *testing.T) {
	dest := &recordingDestination{}
	if err := Publish(dest, models.TopicRfmScores, scores()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c1", "c2"}, dest.keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(dest.messages[0], `"customer_segment":"Champions"`) {
		t.Errorf("unexpected message %s", dest.messages[0])
	}
}

func TestPublishReportsFailingRecord(t *testing.T) {
	dest := &recordingDestination{failOn: 2}
	err := Publish(dest, models.TopicRfmScores, scores())
	if err == nil || !strings.Contains(err.Error(), "sink unavailable") {
		t.Fatalf("error = %v", err)
	}
	if len(dest.messages) != 1 {
		t.Errorf("wrote %d messages before failing, want 1", len(dest.messages))
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleOutput(&buf)
	if err := c.WriteMessage("rfm_scores", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "[rfm_scores] {\"a\":1}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSONOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "reports", "run-1")
	if err := Publish(out, models.TopicRfmScores, scores()); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteMessage(models.TopicRfmScores, []byte("{broken")); err == nil {
		t.Error("expected error for invalid json")
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "reports", "rfm_scores", "run=run-1", "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[0], `{"customer_id":"c1"`) {
		t.Errorf("unexpected file contents: %v", lines)
	}
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewCSVOutput(dir, "reports", "run-2")
	if err := Publish(out, models.TopicRfmScores, scores()); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "reports", "rfm_scores", "run=run-2", "data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	wantHeader := []string{
		"customer_id", "customer_segment", "frequency_score", "last_purchase_date", "monetary_score",
		"name", "purchase_frequency", "recency_score", "rfm_total", "total_spent",
	}
	if diff := cmp.Diff(wantHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	wantFirst := []string{"c1", "Champions", "5", "2024-06-30T00:00:00Z", "4", "Ada", "4", "5", "14", "120.5"}
	if diff := cmp.Diff(wantFirst, rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want header and 2 records", len(rows))
	}
}

func TestParquetOutputLocal(t *testing.T) {
	dir := t.TempDir()
	out := NewParquetOutput(dir, "reports", "run-3")
	if err := Publish(out, models.TopicRfmScores, scores()); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	fr, err := local.NewLocalFileReader(filepath.Join(dir, "reports", "rfm_scores", "run=run-3", "data.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(rfmScoreRow), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != 2 {
		t.Fatalf("got %d rows, want 2", n)
	}
	rows := make([]rfmScoreRow, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatal(err)
	}
	want := rfmScoreRow{
		CustomerID: "c1", Name: "Ada", LastPurchaseDate: "2024-06-30T00:00:00Z", PurchaseFrequency: 4,
		TotalSpent: "120.5", RecencyScore: 5, FrequencyScore: 5, MonetaryScore: 4, RfmTotal: 14, Segment: "Champions",
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestParquetOutputUnknownTopic(t *testing.T) {
	out := NewParquetOutput(t.TempDir(), "reports", "run-4")
	if err := out.WriteMessage("order_events", []byte(`{}`)); err == nil {
		t.Error("expected error for topic without schema")
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
}

type memoryWriter struct {
	buf    bytes.Buffer
	closed bool
}

func (m *memoryWriter) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memoryWriter) Close() error                { m.closed = true; return nil }

type memoryFactory struct {
	objects map[string]*memoryWriter
}

func (f *memoryFactory) NewWriter(bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	w := &memoryWriter{}
	f.objects[bucket+"/"+objectPath] = w
	return w, nil
}

func TestParquetOutputCloud(t *testing.T) {
	factory := &memoryFactory{objects: map[string]*memoryWriter{}}
	out := NewCloudParquetOutput(factory, "analytics", "reports", "run-5")
	summary := []models.SegmentSummary{{Segment: models.SegmentLoyal, Customers: 3, Revenue: decimal.NewFromInt(42)}}
	if err := Publish(out, models.TopicSegmentSummary, summary); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	w, ok := factory.objects["analytics/reports/segment_summary/run=run-5/data.parquet"]
	if !ok {
		t.Fatalf("object not created, have %v", factory.objects)
	}
	if !w.closed {
		t.Error("cloud writer not closed")
	}
	data := w.buf.Bytes()
	if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Errorf("object is not a parquet file (%d bytes)", len(data))
	}
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, newSaramaConfig(models.KafkaConfig{}))
	for _, id := range []string{"c1", "c2"} {
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != "bookrfm.rfm_scores" {
				return fmt.Errorf("topic %s", msg.Topic)
			}
			key, err := msg.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != id {
				return fmt.Errorf("key %s, want %s", key, id)
			}
			if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "run-6" {
				return fmt.Errorf("headers %v", msg.Headers)
			}
			return nil
		})
	}

	out := NewKafkaOutputWithProducer(producer, "bookrfm.", "run-6")
	if err := Publish(out, models.TopicRfmScores, scores()); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteMessage("x", []byte("{}")); err == nil {
		t.Error("expected error after close")
	}
}

func TestCopyValues(t *testing.T) {
	record, err := decodeObject([]byte(`{"segment":"Loyal","customers":3,"revenue":"42.10","extra":null}`))
	if err != nil {
		t.Fatal(err)
	}
	columns := copyColumns(record)
	if diff := cmp.Diff([]string{"run_id", "customers", "extra", "revenue", "segment"}, columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	got := copyValues("run-7", columns, record)
	want := []interface{}{"run-7", "3", nil, "42.10", "Loyal"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeObjectRejectsNonObjects(t *testing.T) {
	for _, msg := range []string{"null", "[1,2]", "42", "{"} {
		if _, err := decodeObject([]byte(msg)); err == nil {
			t.Errorf("decodeObject(%s) should fail", msg)
		}
	}
}
