package mockapi

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
)

// Name pools for fixture generation, flavored after the public
// JSONPlaceholder data set.
var (
	firstNames = []string{
		"Leanne", "Ervin", "Clementine", "Patricia", "Chelsey",
		"Dennis", "Kurtis", "Nicholas", "Glenna", "Rey",
	}
	lastNames = []string{
		"Graham", "Howell", "Bauch", "Lebsack", "Dietrich",
		"Schulist", "Weissnat", "Runolfsdottir", "Reichert", "Padberg",
	}
	companyNames = []string{
		"Romaguera-Crona", "Deckow-Crist", "Romaguera-Jacobson",
		"Robel-Corkery", "Keebler LLC", "Considine-Lockman",
		"Johns Group", "Abernathy Group", "Yost and Sons", "Hoeger LLC",
	}
	emailDomains = []string{
		"april.biz", "melissa.tv", "yesenia.net", "kory.org", "annie.ca",
	}
	loremWords = []string{
		"sunt", "aut", "facere", "repellat", "provident", "occaecati",
		"excepturi", "optio", "reprehenderit", "qui", "est", "esse",
		"voluptatem", "accusantium", "dolorem", "molestiae", "ut",
		"quas", "totam", "nostrum", "rerum", "laudantium", "magnam",
		"eveniet", "quod", "tempora", "nesciunt", "dolores",
	}
)

// Word count ranges for generated post text.
const (
	titleWordsMin  = 3
	titleWordsVary = 4
	bodyWordsMin   = 12
	bodyWordsVary  = 12
)

// Fixture record shapes mirror the JSONPlaceholder wire format.
type fixtureUser struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Company  fixtureCompany `json:"company"`
}

type fixtureCompany struct {
	Name string `json:"name"`
}

type fixturePost struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// generateRecords builds both collections from one seeded source so equal
// seeds always produce identical fixtures.
func generateRecords(userCount, postCount int, seed int64) map[string][]json.RawMessage {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic fixtures need a seeded source
	return map[string][]json.RawMessage{
		resourceUsers: generateUsers(userCount, rng),
		resourcePosts: generatePosts(postCount, userCount, rng),
	}
}

// generateUsers creates userCount user records with sequential IDs.
func generateUsers(userCount int, rng *rand.Rand) []json.RawMessage {
	users := make([]json.RawMessage, 0, userCount)
	for i := 0; i < userCount; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		u := fixtureUser{
			ID:       i + 1,
			Name:     first + " " + last,
			Username: first[:1] + last + strconv.Itoa(i+1),
			Email:    strings.ToLower(first) + "." + strings.ToLower(last) + "@" + emailDomains[rng.Intn(len(emailDomains))],
			Company:  fixtureCompany{Name: companyNames[rng.Intn(len(companyNames))]},
		}
		raw, _ := json.Marshal(u)
		users = append(users, raw)
	}
	return users
}

// generatePosts creates postCount post records spread randomly across the
// generated users. Without users there is nothing to reference, so the
// collection stays empty.
func generatePosts(postCount, userCount int, rng *rand.Rand) []json.RawMessage {
	posts := make([]json.RawMessage, 0, postCount)
	if userCount <= 0 {
		return posts
	}
	for i := 0; i < postCount; i++ {
		p := fixturePost{
			UserID: rng.Intn(userCount) + 1,
			ID:     i + 1,
			Title:  loremText(rng, titleWordsMin, titleWordsVary),
			Body:   loremText(rng, bodyWordsMin, bodyWordsVary),
		}
		raw, _ := json.Marshal(p)
		posts = append(posts, raw)
	}
	return posts
}

// loremText joins between minWords and minWords+vary-1 random pool words.
func loremText(rng *rand.Rand, minWords, vary int) string {
	count := minWords + rng.Intn(vary)
	words := make([]string, count)
	for i := range words {
		words[i] = loremWords[rng.Intn(len(loremWords))]
	}
	return strings.Join(words, " ")
}
