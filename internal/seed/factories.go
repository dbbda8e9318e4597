// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campushub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// pastTime spreads seeded rows over the recent past so feeds look lived-in.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:   gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:      gofakeit.Email(),
		Bio:        gofakeit.Sentence(10),
		Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		University: gofakeit.RandomString([]string{"Waseda", "Keio", "Todai", "Kyodai", "Sophia"}),
		Year:       gofakeit.Number(1, 4),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateChannelPost persists a post on the given channel.
func (f *Factory) CreateChannelPost(user *models.User, channelID uint, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:    user.ID,
		ChannelID: &channelID,
		CreatedAt: f.pastTime(),
	}
	if f.rng.Float32() < 0.3 {
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		post.MediaType = "image"
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateCirclePost persists a post on a circle's timeline. A nil timelineID
// targets the circle's default timeline.
func (f *Factory) CreateCirclePost(user *models.User, circleID uint, timelineID *uint, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:    gofakeit.Paragraph(1, 2, 4, "\n"),
		UserID:     user.ID,
		CircleID:   &circleID,
		TimelineID: timelineID,
		CreatedAt:  f.pastTime(),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}

// CreateReaction persists an emoji reaction from `user` on `post`.
func (f *Factory) CreateReaction(user *models.User, post *models.Post, emoji string) error {
	reaction := &models.Reaction{
		UserID: user.ID,
		PostID: post.ID,
		Emoji:  emoji,
	}
	return f.db.Create(reaction).Error
}

// CreateFollow persists a follow edge between two users.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	follow := &models.Follow{
		FollowerID: follower.ID,
		FollowedID: followed.ID,
	}
	return f.db.Create(follow).Error
}

// CreateCircle persists a circle led by the given user, including the
// leader's executive membership row.
func (f *Factory) CreateCircle(leader *models.User, overrides ...func(*models.Circle)) (*models.Circle, error) {
	circle := &models.Circle{
		Name:        gofakeit.RandomString([]string{"Tennis", "Jazz", "Robotics", "Photography", "Hiking", "Cinema", "Debate", "Cooking"}) + " Circle " + fmt.Sprintf("%d", gofakeit.Number(1, 999)),
		Description: gofakeit.Sentence(12),
		LeaderID:    leader.ID,
		IsPublic:    f.rng.Float32() < 0.8,
	}

	for _, override := range overrides {
		override(circle)
	}

	if err := f.db.Create(circle).Error; err != nil {
		return nil, err
	}

	membership := &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   leader.ID,
		Role:     models.CircleRoleExecutive,
	}
	if err := f.db.Create(membership).Error; err != nil {
		return nil, err
	}
	return circle, nil
}

// AddCircleMember persists a plain membership row for `user` in `circle`.
func (f *Factory) AddCircleMember(circle *models.Circle, user *models.User) error {
	membership := &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   user.ID,
		Role:     models.CircleRoleMember,
	}
	return f.db.Create(membership).Error
}

// CreateTimeline persists a private timeline in `circle` with the given members.
func (f *Factory) CreateTimeline(circle *models.Circle, creator *models.User, members []*models.User) (*models.Timeline, error) {
	timeline := &models.Timeline{
		CircleID:  circle.ID,
		Name:      gofakeit.RandomString([]string{"executives", "planning", "freshmen", "alumni", "core"}),
		CreatorID: creator.ID,
	}
	if err := f.db.Create(timeline).Error; err != nil {
		return nil, err
	}

	for _, member := range members {
		tm := &models.TimelineMembership{
			TimelineID: timeline.ID,
			UserID:     member.ID,
		}
		if err := f.db.Create(tm).Error; err != nil {
			return nil, err
		}
	}
	return timeline, nil
}

// CreateEvent persists a circle event a few days in the future.
func (f *Factory) CreateEvent(circle *models.Circle, creator *models.User, overrides ...func(*models.Event)) (*models.Event, error) {
	event := &models.Event{
		CircleID:    circle.ID,
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Sentence(10),
		Location:    gofakeit.City(),
		StartsAt:    time.Now().Add(time.Duration(f.rng.Intn(30)+1) * 24 * time.Hour),
		CreatedByID: creator.ID,
	}

	for _, override := range overrides {
		override(event)
	}

	if err := f.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// CreateCourse persists a course review entry by the given user.
func (f *Factory) CreateCourse(creator *models.User, overrides ...func(*models.Course)) (*models.Course, error) {
	course := &models.Course{
		CourseName:    gofakeit.RandomString([]string{"Linear Algebra", "Microeconomics", "Organic Chemistry", "Intro to CS", "Modern History"}),
		ProfessorName: gofakeit.Name(),
		University:    creator.University,
		Rating:        gofakeit.Number(1, 5),
		Review:        gofakeit.Paragraph(1, 2, 6, " "),
		CreatedByID:   creator.ID,
	}

	for _, override := range overrides {
		override(course)
	}

	if err := f.db.Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// CreateDirectMessage persists a conversation (if missing) and one message
// between the two users.
func (f *Factory) CreateDirectMessage(sender, recipient *models.User, overrides ...func(*models.DirectMessage)) (*models.DirectMessage, error) {
	u1, u2 := models.NormalizePair(sender.ID, recipient.ID)
	var conv models.Conversation
	if err := f.db.Where(models.Conversation{User1ID: u1, User2ID: u2}).
		FirstOrCreate(&conv).Error; err != nil {
		return nil, err
	}

	message := &models.DirectMessage{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		RecipientID:    recipient.ID,
		Content:        gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func logProgress(kind string, n int) {
	if n > 0 && n%100 == 0 {
		log.Printf("Created %d %s...", n, kind)
	}
}
