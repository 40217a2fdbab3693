package tuneauth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SongDownloader runs the song acquisition pipeline: search the media
// provider, validate the result, download and transcode the audio into the
// content store, and attach the song to the user's list.
type SongDownloader struct {
	UserService UserService
	FileService FileService
	Provider    MediaProvider

	// SearchSuffix is appended to every query to bias the provider away
	// from age-restricted long-form videos, which tend to hang.
	SearchSuffix string

	// SearchTimeout bounds the search step. The download step has no
	// such bound since downloads may legitimately take longer.
	SearchTimeout time.Duration

	MaxSongs    int // song list cap per user
	MaxDuration int // seconds; longer results are rejected before download

	// GenerateSuffix returns the random suffix appended to artifact ids.
	GenerateSuffix func() string

	Logger zerolog.Logger
}

// NewSongDownloader returns a downloader with the study defaults.
func NewSongDownloader() *SongDownloader {
	return &SongDownloader{
		SearchSuffix:   " lyrics",
		SearchTimeout:  15 * time.Second,
		MaxSongs:       MaxSongsPerUser,
		MaxDuration:    600,
		GenerateSuffix: func() string { return uuid.NewString()[:8] },
		Logger:         zerolog.Nop(),
	}
}

// AddSong acquires one song for the user from a free-text query.
//
// The duplicate and limit checks run twice: once up front against the
// loaded user, to avoid a wasted download, and once inside AttachSong
// against fresh state, to close the race where two parallel adds for the
// same user each pass the first check. A conflict at attach time leaves
// the already-downloaded artifact in place; only the list append is
// skipped.
func (d *SongDownloader) AddSong(ctx context.Context, username, query string) (*Song, error) {
	user, err := d.UserService.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	} else if user == nil {
		return nil, ErrUserNotFound
	}
	if len(user.Songs) >= d.MaxSongs {
		return nil, ErrSongLimitReached
	}

	logger := d.Logger.With().Str("username", username).Str("query", query).Logger()

	info, err := d.search(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("title", info.Title).Str("video_id", info.ID).
		Int("duration", info.Duration).Msg("video found")

	// Validate before the expensive download step.
	if info.Duration > d.MaxDuration {
		return nil, ErrSongTooLong
	}
	if user.HasOriginalID(info.ID) {
		return nil, ErrDuplicateSong
	}

	song := &Song{
		ID:         SlugifyTitle(info.Title) + "-" + d.GenerateSuffix(),
		Title:      info.Title,
		OriginalID: info.ID,
		Duration:   info.Duration,
	}

	if err := d.download(ctx, info.WebpageURL, song); err != nil {
		logger.Error().Err(err).Str("song_id", song.ID).Msg("download failed")
		return nil, ErrDownloadFailed
	}
	logger.Debug().Str("song_id", song.ID).Msg("download complete")

	// Final re-check and append run atomically against current state.
	if err := d.UserService.AttachSong(ctx, username, song); err != nil {
		return nil, err
	}

	logger.Info().Str("song_id", song.ID).Msg("song added")
	return song, nil
}

// search issues a single-result search bounded by SearchTimeout.
func (d *SongDownloader) search(ctx context.Context, query string) (*MediaInfo, error) {
	searchCtx, cancel := context.WithTimeout(ctx, d.SearchTimeout)
	defer cancel()

	info, err := d.Provider.Search(searchCtx, query+d.SearchSuffix)
	if err != nil {
		if searchCtx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		d.Logger.Error().Err(err).Str("query", query).Msg("search failed")
		return nil, ErrSearchFailed
	}
	if info == nil {
		return nil, ErrNoResults
	}
	return info, nil
}

// download streams the provider's audio into the content store and fills
// in the song's artifact path.
func (d *SongDownloader) download(ctx context.Context, url string, song *Song) error {
	rc, err := d.Provider.Download(ctx, url)
	if err != nil {
		return err
	}
	defer rc.Close()

	f := File{Name: song.ID + ".opus"}
	if err := d.FileService.CreateFile(ctx, &f, rc); err != nil {
		return err
	}

	song.Path = "/assets/" + f.Name
	return nil
}
