package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"modportal/database"
	"modportal/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gorillasessions "github.com/gorilla/sessions"
	"gorm.io/gorm"
)

// GormStore keeps session records in the portal database. It is the
// default persistent backend when no redis address is configured;
// expired rows are removed by the prune job.
type GormStore struct {
	db      *gorm.DB
	Codecs  []securecookie.Codec
	options *sessions.Options
}

// NewGormStore creates a database-backed session store.
func NewGormStore(db *gorm.DB, keyPairs ...[]byte) *GormStore {
	return &GormStore{
		db:     db,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		options: &sessions.Options{
			Path:   "/",
			MaxAge: defaultMaxAge,
		},
	}
}

// Options sets the default options for the store.
func (s *GormStore) Options(opts sessions.Options) {
	s.options = &opts
}

// Get retrieves a session from the request registry.
func (s *GormStore) Get(r *http.Request, name string) (*gorillasessions.Session, error) {
	return gorillasessions.GetRegistry(r).Get(s, name)
}

// New creates a session, loading existing state from the database when
// the request carries a decodable session cookie.
func (s *GormStore) New(r *http.Request, name string) (*gorillasessions.Session, error) {
	session := gorillasessions.NewSession(s, name)
	session.Options = &gorillasessions.Options{
		Path:     s.options.Path,
		Domain:   s.options.Domain,
		MaxAge:   s.options.MaxAge,
		Secure:   s.options.Secure,
		HttpOnly: s.options.HttpOnly,
		SameSite: s.options.SameSite,
	}
	session.IsNew = true

	if c, errCookie := r.Cookie(name); errCookie == nil {
		err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...)
		if err == nil {
			if err = s.load(session); err == nil {
				session.IsNew = false
			}
		}
	}

	return session, nil
}

// Save persists the session row and writes the cookie. A negative
// MaxAge destroys the record and expires the cookie.
func (s *GormStore) Save(r *http.Request, w http.ResponseWriter, session *gorillasessions.Session) error {
	if session.Options.MaxAge < 0 {
		if err := s.delete(session); err != nil {
			return err
		}
		http.SetCookie(w, newCookie(session, ""))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	if err := s.save(session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}

	http.SetCookie(w, newCookie(session, encoded))
	return nil
}

func (s *GormStore) save(session *gorillasessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("failed to encode session values: %w", err)
	}

	maxAge := session.Options.MaxAge
	if maxAge == 0 {
		maxAge = s.options.MaxAge
	}

	record := model.Session{
		Id:        session.ID,
		Data:      buf.Bytes(),
		ExpiresAt: time.Now().Add(time.Duration(maxAge) * time.Second),
	}
	return s.db.Save(&record).Error
}

func (s *GormStore) load(session *gorillasessions.Session) error {
	record := model.Session{}
	err := s.db.Model(model.Session{}).
		Where("id = ?", session.ID).
		First(&record).
		Error
	if database.IsNotFound(err) {
		return fmt.Errorf("session not found")
	}
	if err != nil {
		return err
	}
	if time.Now().After(record.ExpiresAt) {
		_ = s.delete(session)
		return fmt.Errorf("session expired")
	}

	return gob.NewDecoder(bytes.NewBuffer(record.Data)).Decode(&session.Values)
}

func (s *GormStore) delete(session *gorillasessions.Session) error {
	return s.db.Delete(&model.Session{}, "id = ?", session.ID).Error
}

// Prune deletes expired session rows and returns how many were removed.
func (s *GormStore) Prune() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&model.Session{})
	return result.RowsAffected, result.Error
}
