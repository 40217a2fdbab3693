package bolt

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"tuneauth"
)

// userBucket holds one JSON-encoded record per user, keyed by the
// lowercased username. Case-insensitive lookup falls out of the key.
var userBucket = []byte("Users")

// Ensure service implements interface.
var _ tuneauth.UserService = &UserService{}

// UserService represents a service to manage users.
type UserService struct {
	db *DB
}

// NewUserService returns a new instance of UserService.
func NewUserService(db *DB) *UserService {
	return &UserService{db: db}
}

// FindUserByUsername returns a user, or nil if no user matches.
func (s *UserService) FindUserByUsername(ctx context.Context, username string) (*tuneauth.User, error) {
	tx, err := s.db.Begin(ctx, false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	return findUserByUsername(tx, username)
}

// FindOrCreateUserByUsername returns an existing user by username. If no
// user is found then a new one is created with an empty song list.
func (s *UserService) FindOrCreateUserByUsername(ctx context.Context, username string) (*tuneauth.User, bool, error) {
	if username == "" {
		return nil, false, tuneauth.ErrUsernameRequired
	}

	tx, err := s.db.Begin(ctx, true)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	if user, err := findUserByUsername(tx, username); err != nil {
		return nil, false, err
	} else if user != nil {
		return user, true, nil
	}

	user := &tuneauth.User{
		Username:  username,
		Songs:     []tuneauth.Song{},
		Metrics:   []tuneauth.Metric{},
		CreatedAt: tx.Now,
	}
	if err := saveUser(tx, user); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// SetPassword stores the user's plaintext password.
func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	tx, err := s.db.Begin(ctx, true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user, err := findUserByUsername(tx, username)
	if err != nil {
		return err
	} else if user == nil {
		return tuneauth.ErrUserNotFound
	}

	user.Password = password
	if err := saveUser(tx, user); err != nil {
		return err
	}
	return tx.Commit()
}

// Authenticate verifies a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*tuneauth.User, error) {
	tx, err := s.db.Begin(ctx, false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := findUserByUsername(tx, username)
	if err != nil {
		return nil, err
	} else if user == nil {
		return nil, tuneauth.ErrUserNotFound
	}

	if user.Password != password {
		return nil, tuneauth.ErrWrongPassword
	}
	return user, nil
}

// AttachSong appends a song to the user's list. The duplicate and limit
// re-checks run against the freshly loaded record inside the same write
// transaction, so a parallel download that finished first is detected
// here even though it passed the pipeline's pre-download check.
func (s *UserService) AttachSong(ctx context.Context, username string, song *tuneauth.Song) error {
	if song == nil {
		return tuneauth.ErrSongNotFound
	}

	tx, err := s.db.Begin(ctx, true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user, err := findUserByUsername(tx, username)
	if err != nil {
		return err
	} else if user == nil {
		return tuneauth.ErrUserNotFound
	}

	if user.HasOriginalID(song.OriginalID) {
		return tuneauth.ErrParallelDuplicate
	}
	if len(user.Songs) >= tuneauth.MaxSongsPerUser {
		return tuneauth.ErrSongLimitReached
	}

	user.Songs = append(user.Songs, *song)
	if err := saveUser(tx, user); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveSong detaches a song from the user's list. The artifact file is
// left in place.
func (s *UserService) RemoveSong(ctx context.Context, username, songID string) (int, error) {
	tx, err := s.db.Begin(ctx, true)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	user, err := findUserByUsername(tx, username)
	if err != nil {
		return 0, err
	} else if user == nil {
		return 0, tuneauth.ErrUserNotFound
	}

	idx := -1
	for i := range user.Songs {
		if user.Songs[i].ID == songID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, tuneauth.ErrSongNotFound
	}

	user.Songs = append(user.Songs[:idx], user.Songs[idx+1:]...)
	if err := saveUser(tx, user); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(user.Songs), nil
}

// AppendMetric records a study metric. Unknown users are silently ignored.
func (s *UserService) AppendMetric(ctx context.Context, username string, metric *tuneauth.Metric) error {
	if metric == nil {
		return nil
	}

	tx, err := s.db.Begin(ctx, true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user, err := findUserByUsername(tx, username)
	if err != nil {
		return err
	} else if user == nil {
		return nil
	}

	user.Metrics = append(user.Metrics, *metric)
	if err := saveUser(tx, user); err != nil {
		return err
	}
	return tx.Commit()
}

func userKey(username string) []byte {
	return []byte(strings.ToLower(username))
}

func findUserByUsername(tx *Tx, username string) (*tuneauth.User, error) {
	bkt := tx.Bucket(userBucket)
	if bkt == nil {
		return nil, nil
	}

	var u tuneauth.User
	if buf := bkt.Get(userKey(username)); buf == nil {
		return nil, nil
	} else if err := unmarshalUser(buf, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func saveUser(tx *Tx, user *tuneauth.User) error {
	if user.Username == "" {
		return tuneauth.ErrUsernameRequired
	}

	user.UpdatedAt = tx.Now

	if buf, err := marshalUser(user); err != nil {
		return err
	} else if bkt, err := tx.CreateBucketIfNotExists(userBucket); err != nil {
		return err
	} else if err := bkt.Put(userKey(user.Username), buf); err != nil {
		return err
	}
	return nil
}

func marshalUser(v *tuneauth.User) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalUser(data []byte, v *tuneauth.User) error {
	return json.Unmarshal(data, v)
}
