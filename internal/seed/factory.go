// Package seed creates demo data for development databases. Nothing in the
// request path depends on it.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every generated user.
const DefaultPassword = "password123"

// Options controls how much data is generated.
type Options struct {
	Users          int
	PostsPerUser   int
	MaxComments    int
	MaxDepth       int
	MaxTagsPerPost int
	MaxDays        int
	BcryptCost     int
	SkipBcrypt     bool
	DryRun         bool
	RandSeed       int64
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MaxTagsPerPost <= 0 {
		o.MaxTagsPerPost = 3
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

// Factory builds domain entities and persists them through the repositories.
// In DryRun mode nothing is written and entities get synthetic ids.
type Factory struct {
	db       *gorm.DB
	opts     Options
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	log      *observability.Logger
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
// A zero RandSeed draws a random seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	opts = opts.withDefaults()
	f := &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(opts.RandSeed),
		log:    observability.GlobalLogger,
		nextID: 1000,
	}
	if db != nil {
		f.users = repository.NewUserRepository(db)
		f.posts = repository.NewPostRepository(db)
		f.comments = repository.NewCommentRepository(db)
	}
	return f
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser generates an adult account with a unique email. Override functions
// run before validation.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*validation.SignUp)) (*models.User, error) {
	person := f.faker.Person()
	in := validation.SignUp{
		FullName: person.FirstName + " " + person.LastName,
		Password: DefaultPassword,
		Age:      f.faker.Number(validation.MinAdvisoryAge, validation.MaxAdvisoryAge),
		Email: strings.ToLower(fmt.Sprintf("%s.%s.%d@%s",
			person.FirstName, person.LastName, f.faker.Number(1000, 9999), f.faker.DomainName())),
	}
	for _, override := range overrides {
		override(&in)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user := &models.User{FullName: in.FullName, Age: in.Age, Email: in.Email}
	if f.opts.SkipBcrypt {
		user.Password = in.Password
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), f.opts.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		f.log.Debug("[dry-run] CreateUser", slog.Uint64("id", uint64(user.ID)), slog.String("email", user.Email))
		return user, nil
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns a validated create intent authored by user in category,
// tagged with a random ordered subset of tags.
func (f *Factory) BuildPost(user *models.User, category *models.Category, tags []*models.Tag) validation.CreatePost {
	in := validation.CreatePost{PostFields: validation.PostFields{
		Title:            strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."),
		ShortDescription: f.faker.Sentence(12),
		UserID:           user.ID,
		CategoryID:       category.ID,
		Content:          f.faker.Paragraph(2, 4, 12, "\n\n"),
		TagIDs:           f.pickTags(tags),
	}}
	if len(in.ShortDescription) > validation.MaxShortDescriptionLen {
		in.ShortDescription = in.ShortDescription[:validation.MaxShortDescriptionLen]
	}
	return in
}

func (f *Factory) pickTags(tags []*models.Tag) []uint {
	if len(tags) == 0 {
		return []uint{}
	}
	n := f.faker.Number(0, min(f.opts.MaxTagsPerPost, len(tags)))
	picked := make([]uint, 0, n)
	seen := make(map[int]struct{}, n)
	for len(picked) < n {
		i := f.faker.Number(0, len(tags)-1)
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		picked = append(picked, tags[i].ID)
	}
	return picked
}

// CreatePost persists in with a created_at spread over the last MaxDays days.
func (f *Factory) CreatePost(ctx context.Context, in validation.CreatePost) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	short := in.ShortDescription
	post := &models.Post{
		UserID:           in.UserID,
		Title:            in.Title,
		ShortDescription: &short,
		Content:          in.Content,
		CategoryID:       in.CategoryID,
		CreatedAt:        f.pastTime(),
	}

	if f.opts.DryRun {
		post.ID = f.syntheticID()
		f.log.Debug("[dry-run] CreatePost", slog.Uint64("id", uint64(post.ID)), slog.String("title", post.Title))
		return post, nil
	}
	if err := f.posts.Create(ctx, post, in.TagIDs); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment adds a comment by user on post. A nil parent makes it a root.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, user *models.User, parent *models.Comment) (*models.Comment, error) {
	in := validation.CommentInput{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: f.faker.Sentence(f.faker.Number(4, 20)),
	}
	createdAt := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute)
	if parent != nil {
		in.ParentID = &parent.ID
		createdAt = parent.CreatedAt.Add(time.Duration(f.faker.Number(1, 24*60)) * time.Minute)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		UserID:    in.UserID,
		Content:   in.Content,
		ParentID:  in.ParentID,
		CreatedAt: createdAt,
	}
	if f.opts.DryRun {
		comment.ID = f.syntheticID()
		return comment, nil
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays-1))*24*time.Hour +
		time.Duration(f.faker.Number(0, 23))*time.Hour +
		time.Duration(f.faker.Number(0, 59))*time.Minute
	return time.Now().Add(-back)
}
