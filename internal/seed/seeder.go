package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevPassword is the password of every seeded listener
const DevPassword = "password123"

var genres = []string{
	"pop", "rock", "indie rock", "hip hop", "jazz", "blues", "soul", "funk",
	"house", "techno", "deep house", "drum and bass", "folk", "country", "metal", "classical",
}

// Options controls how much data SeedDev creates
type Options struct {
	Users  int
	Songs  int
	Views  int
	Likes  int
	Bucket string
	Region string
}

// DefaultOptions returns a catalog large enough to exercise parallel scoring
func DefaultOptions() Options {
	return Options{
		Users:  50,
		Songs:  5000,
		Views:  2000,
		Likes:  3000,
		Bucket: "cadence-dev",
		Region: "us-east-1",
	}
}

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewSeeder creates a seeder. The same seed always produces the same catalog.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:    db,
		faker: gofakeit.New(uint64(seed)),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Result summarizes what SeedDev created
type Result struct {
	Users []models.User
	Songs []models.Song
}

// SeedDev fills the database with listeners, songs, views and likes
func (s *Seeder) SeedDev(ctx context.Context, opts Options) (*Result, error) {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating songs...")
	songs, err := s.seedSongs(ctx, users, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to seed songs: %w", err)
	}

	logger.Log.Info("Creating view history...")
	if err := s.seedViews(ctx, users, songs, opts.Views); err != nil {
		return nil, fmt.Errorf("failed to seed views: %w", err)
	}

	logger.Log.Info("Creating likes...")
	if err := s.seedLikes(ctx, users, songs, opts.Likes); err != nil {
		return nil, fmt.Errorf("failed to seed likes: %w", err)
	}

	return &Result{Users: users, Songs: songs}, nil
}

// Clean removes all seeded rows
func (s *Seeder) Clean(ctx context.Context) error {
	// Delete in reverse order of dependencies
	for _, table := range []string{"playlist_entries", "song_likes", "song_views", "songs", "users"} {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]models.User, 0, count)
	seen := make(map[string]struct{}, count)
	for len(users) < count {
		username := strings.ToLower(s.faker.Username())
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}

		users = append(users, models.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: string(hashed),
			DisplayName:  s.faker.Name(),
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, err
	}
	logger.Log.Info("Created users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Seeder) seedSongs(ctx context.Context, users []models.User, opts Options) ([]models.Song, error) {
	if len(users) == 0 || opts.Songs == 0 {
		return []models.Song{}, nil
	}

	// a small artist pool so artist affinity has something to find
	artists := make([]string, max(opts.Songs/20, 1))
	for i := range artists {
		artists[i] = s.faker.Name()
	}

	start := time.Now().AddDate(0, -6, 0)
	songs := make([]models.Song, opts.Songs)
	for i := range songs {
		id := s.faker.UUID()
		songGenres := models.StringArray{genres[s.rng.Intn(len(genres))]}
		if s.rng.Intn(3) == 0 {
			songGenres = append(songGenres, genres[s.rng.Intn(len(genres))])
		}

		songs[i] = models.Song{
			ID:         id,
			UploadedBy: users[s.rng.Intn(len(users))].ID,
			Title:      s.faker.SongName(),
			Artist:     artists[s.rng.Intn(len(artists))],
			Album:      s.faker.BookTitle(),
			Year:       s.faker.Number(1960, time.Now().Year()),
			Genre:      songGenres,
			Duration:   float64(s.faker.Number(90, 420)),
			AudioURL:   storage.ObjectURL(opts.Bucket, opts.Region, id+".mp3"),
			CreatedAt:  start.Add(time.Duration(i) * time.Minute),
		}
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&songs, 500).Error; err != nil {
		return nil, err
	}
	logger.Log.Info("Created songs", zap.Int("count", len(songs)), zap.Int("artists", len(artists)))
	return songs, nil
}

func (s *Seeder) seedViews(ctx context.Context, users []models.User, songs []models.Song, count int) error {
	if len(users) == 0 || len(songs) == 0 || count == 0 {
		return nil
	}

	views := make([]models.SongView, count)
	for i := range views {
		views[i] = models.SongView{
			UserID:    users[s.rng.Intn(len(users))].ID,
			SongID:    songs[s.rng.Intn(len(songs))].ID,
			CreatedAt: s.faker.DateRange(time.Now().AddDate(0, 0, -30), time.Now()),
		}
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&views, 500).Error; err != nil {
		return err
	}
	logger.Log.Info("Created views", zap.Int("count", count))
	return nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []models.User, songs []models.Song, count int) error {
	if len(users) == 0 || len(songs) == 0 {
		return nil
	}

	type pair struct{ user, song int }
	seen := make(map[pair]struct{}, count)
	likes := make([]models.SongLike, 0, count)
	perSong := make(map[string]int)

	// bounded attempts: a small catalog may not have count distinct pairs
	for attempts := 0; len(likes) < count && attempts < count*4; attempts++ {
		p := pair{s.rng.Intn(len(users)), s.rng.Intn(len(songs))}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		likes = append(likes, models.SongLike{UserID: users[p.user].ID, SongID: songs[p.song].ID})
		perSong[songs[p.song].ID]++
	}
	if len(likes) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&likes, 500).Error; err != nil {
			return err
		}
		for songID, n := range perSong {
			if err := tx.Model(&models.Song{}).Where("id = ?", songID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", n)).Error; err != nil {
				return err
			}
		}
		for i := range songs {
			songs[i].LikeCount += perSong[songs[i].ID]
		}
		logger.Log.Info("Created likes", zap.Int("count", len(likes)))
		return nil
	})
}
