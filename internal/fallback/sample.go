// Package fallback holds the read-only sample dataset read operations may
// degrade to when the backing store is unreachable. It is injected into the
// usecases as a capability; passing nil disables degradation entirely.
package fallback

import (
	"sort"
	"time"

	chatModels "knead/internal/chat/model"
	userModels "knead/internal/user/model"

	"github.com/pkg/errors"
)

type Sample struct {
	users     []userModels.User
	usersByID map[string]*userModels.User
	convs     []chatModels.Conversation
	messages  map[string][]chatModels.Message
}

// NewSample validates the fixture set: a duplicate participant pair would
// make fallback conversation lookup non-deterministic, so it is rejected at
// construction.
func NewSample() (*Sample, error) {
	s := &Sample{
		users:     sampleUsers(),
		usersByID: make(map[string]*userModels.User),
		convs:     sampleConversations(),
		messages:  sampleMessages(),
	}
	for i := range s.users {
		s.usersByID[s.users[i].ID] = &s.users[i]
	}

	pairs := make(map[[2]string]string, len(s.convs))
	for _, c := range s.convs {
		lo, hi := chatModels.NormalizePair(c.UserLo, c.UserHi)
		key := [2]string{lo, hi}
		if other, ok := pairs[key]; ok {
			return nil, errors.Errorf("fallback: conversations %s and %s share pair (%s,%s)", other, c.ID, lo, hi)
		}
		pairs[key] = c.ID
	}

	for id := range s.messages {
		msgs := s.messages[id]
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		})
		s.messages[id] = msgs
	}
	return s, nil
}

func (s *Sample) Users() []userModels.User {
	out := make([]userModels.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Sample) UserByID(id string) (*userModels.User, bool) {
	u, ok := s.usersByID[id]
	return u, ok
}

func (s *Sample) ConversationsForUser(userID string) []chatModels.Conversation {
	var out []chatModels.Conversation
	for _, c := range s.convs {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Sample) MessagesForConversation(conversationID string) []chatModels.Message {
	msgs := s.messages[conversationID]
	out := make([]chatModels.Message, len(msgs))
	copy(out, msgs)
	return out
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func prefs(userID string, maxDistance, minAge, maxAge int, genders ...string) *userModels.Preferences {
	return &userModels.Preferences{
		UserID:      userID,
		MaxDistance: maxDistance,
		MinAge:      minAge,
		MaxAge:      maxAge,
		Genders:     genders,
	}
}

func sampleUsers() []userModels.User {
	return []userModels.User{
		{
			ID: "1", Name: "Emma Johnson", Age: 28, Gender: userModels.GenderFemale,
			Bio:      "Certified massage therapist specializing in deep tissue and Swedish massage. Love helping people relieve stress!",
			Latitude: 40.7128, Longitude: -74.0060, City: "New York",
			ProfilePicture: "https://images.unsplash.com/photo-1494790108377-be9c29b29330",
			Photos: []string{
				"https://images.unsplash.com/photo-1519824145371-296894a0daa9",
				"https://images.unsplash.com/photo-1544161515-4ab6ce6db874",
			},
			Skills:      []string{"Deep Tissue", "Swedish", "Hot Stone"},
			Preferences: prefs("1", 20, 25, 45, "male", "female", "non-binary"),
			LastActive:  mustTime("2023-05-15T15:30:00Z"),
		},
		{
			ID: "2", Name: "Michael Chen", Age: 32, Gender: userModels.GenderMale,
			Bio:      "Experienced in sports massage and injury recovery. Looking to exchange techniques and learn from others.",
			Latitude: 40.7282, Longitude: -73.7940, City: "New York",
			ProfilePicture: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e",
			Photos:         []string{"https://images.unsplash.com/photo-1556760544-74068565f05c"},
			Skills:         []string{"Sports Massage", "Trigger Point", "Myofascial Release"},
			Preferences:    prefs("2", 15, 25, 40, "female", "non-binary"),
			LastActive:     mustTime("2023-05-14T20:45:00Z"),
		},
		{
			ID: "3", Name: "Sophia Martinez", Age: 26, Gender: userModels.GenderFemale,
			Bio:      "Yoga instructor and massage enthusiast. I believe in the healing power of touch and energy work.",
			Latitude: 40.6782, Longitude: -73.9442, City: "Brooklyn",
			ProfilePicture: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80",
			Photos: []string{
				"https://images.unsplash.com/photo-1579126038374-6064e9370f0f",
				"https://images.unsplash.com/photo-1552693673-1bf958298935",
			},
			Skills:      []string{"Thai Massage", "Reiki", "Reflexology"},
			Preferences: prefs("3", 10, 24, 35, "male", "female"),
			LastActive:  mustTime("2023-05-15T09:15:00Z"),
		},
		{
			ID: "4", Name: "David Wilson", Age: 35, Gender: userModels.GenderMale,
			Bio:      "Physical therapist by day, massage enthusiast by night. Looking for technique exchanges and networking.",
			Latitude: 40.7831, Longitude: -73.9712, City: "Manhattan",
			ProfilePicture: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d",
			Photos:         []string{"https://images.unsplash.com/photo-1566492031773-4f4e44671857"},
			Skills:         []string{"Sports Therapy", "Acupressure", "Craniosacral"},
			Preferences:    prefs("4", 25, 25, 45, "female"),
			LastActive:     mustTime("2023-05-13T18:20:00Z"),
		},
		{
			ID: "5", Name: "Olivia Kim", Age: 29, Gender: userModels.GenderFemale,
			Bio:      "Amateur massage enthusiast looking to improve my skills. I specialize in relaxation techniques.",
			Latitude: 40.7609, Longitude: -73.9840, City: "Queens",
			ProfilePicture: "https://images.unsplash.com/photo-1529626455594-4ff0802cfb7e",
			Photos:         []string{"https://images.unsplash.com/photo-1600334129128-685c5582fd35"},
			Skills:         []string{"Swedish", "Aromatherapy", "Head Massage"},
			Preferences:    prefs("5", 15, 28, 40, "male", "female", "non-binary"),
			LastActive:     mustTime("2023-05-14T12:50:00Z"),
		},
		{
			ID: "6", Name: "James Taylor", Age: 31, Gender: userModels.GenderMale,
			Bio:      "Chiropractor with extensive knowledge of back and neck massages. Looking to trade techniques.",
			Latitude: 40.6501, Longitude: -73.9496, City: "Brooklyn",
			ProfilePicture: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e",
			Photos:         []string{"https://images.unsplash.com/photo-1583454110551-21f2fa2afe61"},
			Skills:         []string{"Shiatsu", "Deep Tissue", "Chiropractic"},
			Preferences:    prefs("6", 20, 25, 35, "female", "non-binary"),
			LastActive:     mustTime("2023-05-15T14:30:00Z"),
		},
		{
			ID: "7", Name: "Ava Williams", Age: 27, Gender: userModels.GenderFemale,
			Bio:      "Holistic healer passionate about energy work, reiki, and massage therapy. Would love to exchange practices!",
			Latitude: 40.7282, Longitude: -74.0776, City: "Jersey City",
			ProfilePicture: "https://images.unsplash.com/photo-1534751516642-a1af1ef26a56",
			Photos:         []string{"https://images.unsplash.com/photo-1519975258993-60b42d1c2ee2"},
			Skills:         []string{"Reiki", "Thai Massage", "Sound Healing"},
			Preferences:    prefs("7", 15, 25, 40, "male", "female"),
			LastActive:     mustTime("2023-05-14T16:40:00Z"),
		},
	}
}

func sampleConversations() []chatModels.Conversation {
	return []chatModels.Conversation{
		{ID: "conv1", UserLo: "1", UserHi: "2", CreatedAt: mustTime("2023-05-15T10:00:00Z")},
		{ID: "conv2", UserLo: "1", UserHi: "3", CreatedAt: mustTime("2023-05-14T14:00:00Z")},
		{ID: "conv3", UserLo: "1", UserHi: "4", CreatedAt: mustTime("2023-05-15T09:00:00Z")},
	}
}

func sampleMessages() map[string][]chatModels.Message {
	return map[string][]chatModels.Message{
		"conv1": {
			{ID: "msg1", ConversationID: "conv1", SenderID: "2", Content: "Hi Emma, I saw you specialize in deep tissue. I'd love to exchange techniques sometime!", CreatedAt: mustTime("2023-05-15T10:30:00Z"), Read: true},
			{ID: "msg2", ConversationID: "conv1", SenderID: "1", Content: "Hey Michael! That sounds great. I'd love to learn more about your sports massage approach.", CreatedAt: mustTime("2023-05-15T10:45:00Z"), Read: true},
			{ID: "msg3", ConversationID: "conv1", SenderID: "2", Content: "Perfect! Are you free this weekend for a skill exchange?", CreatedAt: mustTime("2023-05-15T11:00:00Z"), Read: true},
			{ID: "msg4", ConversationID: "conv1", SenderID: "2", Content: "I could also demonstrate some trigger point techniques that are great for athletes.", CreatedAt: mustTime("2023-05-15T11:02:00Z"), Read: false},
			{ID: "msg5", ConversationID: "conv1", SenderID: "2", Content: "Let me know what works for you!", CreatedAt: mustTime("2023-05-15T11:05:00Z"), Read: false},
		},
		"conv2": {
			{ID: "msg6", ConversationID: "conv2", SenderID: "3", Content: "Emma, I'd love to share some Thai massage techniques with you. Your profile mentioned you're interested in learning new styles.", CreatedAt: mustTime("2023-05-14T14:20:00Z"), Read: true},
			{ID: "msg7", ConversationID: "conv2", SenderID: "1", Content: "That would be amazing, Sophia! I've always wanted to learn more about Thai massage.", CreatedAt: mustTime("2023-05-14T15:30:00Z"), Read: true},
		},
		"conv3": {
			{ID: "msg8", ConversationID: "conv3", SenderID: "4", Content: "Hello Emma, I noticed you do hot stone massage. I've been wanting to incorporate that into my practice. Would you be open to a trade?", CreatedAt: mustTime("2023-05-15T09:15:00Z"), Read: false},
		},
	}
}
