package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msomdec/inkwell/internal/domain"
)

// samplePosts is the demo content loaded by `inkwell seed`.
var samplePosts = []PostInput{
	{
		Title:      "10 Simple Steps to Start Your Zero-Waste Journey",
		Author:     "GreenLifeGuru",
		Excerpt:    "Begin your sustainable living journey with these practical and achievable zero-waste tips.",
		Content:    "<h2>Starting Your Zero-Waste Journey</h2><p>Making the transition to a zero-waste lifestyle doesn't have to be overwhelming.</p><ol><li>Audit your waste for a week.</li><li>Invest in reusables.</li><li>Start composting.</li><li>Shop in bulk.</li><li>Learn to refuse.</li></ol><p>The goal isn't perfection but progress.</p>",
		CoverImage: "https://images.unsplash.com/photo-1611284446314-60a58ac0deb9",
		Tags:       []string{"Sustainable Living", "Zero Waste", "Environment", "Lifestyle"},
	},
	{
		Title:      "The Future of AI: 2024's Breakthrough Technologies",
		Author:     "ByteBlazer",
		Excerpt:    "Explore the latest AI innovations shaping our future, from quantum computing to neural interfaces.",
		Content:    "<h2>AI Breakthroughs Transforming Our World</h2><p>The field of artificial intelligence continues to evolve at an unprecedented pace.</p><h3>Quantum AI Integration</h3><p>Quantum computing and AI together open problems that were previously out of reach.</p><h3>AI in Healthcare</h3><p>Diagnosis and drug discovery are changing quickly.</p>",
		CoverImage: "https://images.unsplash.com/photo-1485827404703-89b55fcc595e",
		Tags:       []string{"Technology", "AI", "Innovation", "Future Tech"},
	},
	{
		Title:      "Hidden Gems of Southeast Asia: Off the Beaten Path",
		Author:     "WanderlustWraith",
		Excerpt:    "Discover secret locations and authentic experiences in Southeast Asia's less-traveled destinations.",
		Content:    "<h2>Exploring Southeast Asia's Secret Spots</h2><p>Beyond the popular destinations lie countless hidden treasures.</p><h3>Kampong Ayer, Brunei</h3><p>Life in the world's largest water village.</p><h3>Phong Nha, Vietnam</h3><p>Some of the world's largest caves.</p>",
		CoverImage: "https://images.unsplash.com/photo-1552465011-b4e21bf6e79a",
		Tags:       []string{"Travel", "Adventure", "Southeast Asia", "Hidden Gems"},
	},
	{
		Title:      "Nutrient-Packed Buddha Bowls: 5 Perfect Combinations",
		Author:     "FitFoodieFreak",
		Excerpt:    "Five balanced bowl recipes that make healthy eating simple and delicious.",
		Content:    "<h2>Build a Better Bowl</h2><p>A good bowl balances grains, greens, protein and a bright dressing.</p><ul><li>Mediterranean quinoa</li><li>Teriyaki tofu</li><li>Mexican black bean</li></ul>",
		CoverImage: "https://images.unsplash.com/photo-1512621776951-a57141f2eefd",
		Tags:       []string{"Healthy Eating", "Recipes", "Nutrition", "Meal Prep"},
	},
	{
		Title:      "Mastering Natural Light Photography",
		Author:     "ShutterSage",
		Excerpt:    "Use the sun as your studio light with these practical techniques for every time of day.",
		Content:    "<h2>Working With the Sun</h2><p>Golden hour is only the beginning.</p><h3>Open Shade</h3><p>Soft, even light for portraits at midday.</p><h3>Backlighting</h3><p>Rim light and flare for drama.</p>",
		CoverImage: "https://images.unsplash.com/photo-1452587925148-ce544e77e70d",
		Tags:       []string{"Photography", "Tutorial", "Natural Light", "Creative"},
	},
	{
		Title:      "Understanding Black Holes: Latest Discoveries",
		Author:     "CosmicCurator",
		Excerpt:    "From the first images to gravitational waves, what we have learned about black holes recently.",
		Content:    "<h2>Peering Into the Dark</h2><p>Black holes remain among the most fascinating objects in the universe.</p><p>Our understanding of black holes continues to evolve with new observations.</p>",
		CoverImage: "https://images.unsplash.com/photo-1462331940025-496dfbfc7564",
		Tags:       []string{"Science", "Space", "Physics", "Astronomy"},
	},
}

// Seed creates the sample posts owned by owner, skipping any whose title
// already maps to an existing slug. It returns the number of posts created.
func (s *PostService) Seed(ctx context.Context, owner *domain.User) (int, error) {
	session := &domain.Session{UserID: owner.ID, Role: owner.Role, Name: owner.Name, Email: owner.Email}

	created := 0
	for _, in := range samplePosts {
		exists, err := s.posts.SlugExists(ctx, Slugify(in.Title))
		if err != nil {
			return created, fmt.Errorf("check slug: %w", err)
		}
		if exists {
			slog.Debug("sample post already present", "title", in.Title)
			continue
		}

		in.Status = string(domain.PostStatusPublished)
		post, err := s.Create(ctx, session, in)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", in.Title, err)
		}
		slog.Info("created post", "title", post.Title, "slug", post.Slug)
		created++
	}
	return created, nil
}

// SamplePostCount is the number of posts Seed creates on an empty store.
func SamplePostCount() int {
	return len(samplePosts)
}
