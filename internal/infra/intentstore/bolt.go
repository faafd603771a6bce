package intentstore

import (
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "intents"

var ErrNotFound = errors.New("intent not found")

// mock intentエンドポイントが発行したintentの記録。
type Intent struct {
	ID           string    `json:"id"`
	ClientSecret string    `json:"client_secret"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storeはboltファイル1つで済む埋め込みKVS。
// 同じIdempotency-Keyには必ず同じintentを返す。
type Store struct {
	db *bolt.DB
}

// Openはファイルを開き（無ければ作り）、バケットを用意する。
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateはkeyにひもづくintentをONLY IF ABSENTで保存する。
// 既にあれば保存済みのものを返し、書き込みはしない（リトライ安全）。
// 戻り値のboolは「今回新規に作られたか」。
func (s *Store) Create(key string, in Intent) (Intent, bool, error) {
	var result Intent
	created := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		existing := b.Get([]byte(key))
		if existing != nil {
			return json.Unmarshal(existing, &result)
		}

		data, err := json.Marshal(in)
		if err != nil {
			return err
		}

		result = in
		created = true
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return Intent{}, false, err
	}

	return result, created, nil
}

// Getはkeyのintentを返す。無ければErrNotFound。
func (s *Store) Get(key string) (Intent, error) {
	var in Intent

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &in)
	})
	if err != nil {
		return Intent{}, err
	}

	return in, nil
}
