package records

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"record-sync/core/database"
	"record-sync/core/journal"
	"record-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBucket = "records"

const weaponsSnapshot = `{
  "files": [{"name": "Skyrim.esm", "loadOrder": 0}, {"name": "Update.esm", "loadOrder": 4}],
  "definitions": {
    "WEAP": {"valueType": "vtStruct", "smashType": "stRecord", "elements": [
      {"name": "Name", "valueType": "vtString", "smashType": "stString"},
      {"name": "Value", "valueType": "vtNumber", "smashType": "stInteger"},
      {"name": "Template", "valueType": "vtReference", "smashType": "stInteger"}
    ]}
  },
  "records": [
    {"name": "IronSword", "signature": "WEAP", "elements": [
      {"name": "Name", "value": "Rusty Sword"},
      {"name": "Value", "value": 10}
    ]},
    {"name": "SteelSword", "signature": "WEAP", "elements": [
      {"name": "Name", "value": "Steel Sword"}
    ]}
  ]
}`

const weaponsTarget = `{
  "IronSword": {"Name": "Iron Sword", "Value": 25, "Template": "Update.esm:000ABC"},
  "Ghost": {"Name": "Nobody"},
  "SteelSword": "not a mapping"
}`

// bucket backs a mocks.Client with canned objects and records uploads.
type bucket struct {
	client *mocks.Client

	mu  sync.Mutex
	put map[string]string
}

func newBucket() *bucket {
	b := &bucket{client: new(mocks.Client), put: make(map[string]string)}
	b.client.On("PutObject", mock.Anything, testBucket, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			b.mu.Lock()
			b.put[args.String(2)] = string(data)
			b.mu.Unlock()
		}).
		Return(minio.UploadInfo{}, nil)
	return b
}

func (b *bucket) object(name, content string) *bucket {
	b.client.On("GetObject", mock.Anything, testBucket, name, mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil).Once()
	return b
}

func (b *bucket) missing(name string) *bucket {
	b.client.On("GetObject", mock.Anything, testBucket, name, mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})
	return b
}

func (b *bucket) uploaded(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.put[name]
	return v, ok
}

func (b *bucket) reportKeys(set string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.put {
		if strings.HasPrefix(k, "reports/"+set+"/") {
			keys = append(keys, k)
		}
	}
	return keys
}

func testConfig() Config {
	return Config{
		SnapshotPrefix: "snapshots",
		TargetPrefix:   "targets",
		ReportPrefix:   "reports",
		Journal:        true,
		HistoryLimit:   20,
	}
}

func newTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	j := journal.New(db)
	require.NoError(t, j.Migrate(context.Background()))
	return j
}

func newTestService(b *bucket, j *journal.Journal) *Service {
	return NewService(b.client, testBucket, testConfig(), j, zap.NewNop())
}
