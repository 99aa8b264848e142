package search

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Helper to create an auction created `age` hours before base
func newAuction(title, description string, price float64, age int) models.Auction {
	return models.Auction{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Category:    "Electronics",
		Location:    "Auckland",
		Colour:      "Black",
		StartPrice:  price,
		CreatedAt:   base.Add(-time.Duration(age) * time.Hour),
	}
}

func titles(auctions []models.Auction) []string {
	out := make([]string, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, a.Title)
	}
	return out
}

func TestEscapeRegex(t *testing.T) {
	t.Parallel()

	tests := []string{"a.b*", "(phone)", "[x]+?", `back\slash`, "^$|{}"}
	for _, in := range tests {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			re, err := regexp.Compile(EscapeRegex(in))
			require.NoError(t, err)
			require.True(t, re.MatchString("prefix "+in+" suffix"))
		})
	}

	// escaped pattern must not behave like a wildcard
	re := regexp.MustCompile(EscapeRegex("a.b*"))
	require.False(t, re.MatchString("axbbb"))
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int64
		wantErr  bool
	}{
		{name: "empty_uses_default", raw: "", expected: DefaultSearchLimit},
		{name: "padded", raw: " 7 ", expected: 7},
		{name: "max", raw: "100", expected: MaxLimit},
		{name: "above_max", raw: "101", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "not_a_number", raw: "ten", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := ParseLimit(tc.raw, DefaultSearchLimit)
			if tc.wantErr {
				require.ErrorIs(t, err, marketerrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, n)
		})
	}
}

func TestBuildAuctionQuery(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	tests := []struct {
		name          string
		params        Params
		expectedError error
		validate      func(t *testing.T, q Query)
	}{
		{
			name:   "defaults",
			params: Params{},
			validate: func(t *testing.T, q Query) {
				require.Equal(t, SortLatest, q.Sort)
				require.Equal(t, int64(DefaultLimit), q.Limit)
				require.Empty(t, q.Filter())
			},
		},
		{
			name:   "unknown_sort_falls_back_to_latest",
			params: Params{Sort: "random"},
			validate: func(t *testing.T, q Query) {
				require.Equal(t, SortLatest, q.Sort)
				require.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.SortSpec())
			},
		},
		{
			name:   "price_range_and_exact_fields",
			params: Params{MinPrice: "10", MaxPrice: "99.5", Category: "Toys", Colour: "Red", Location: "Nelson"},
			validate: func(t *testing.T, q Query) {
				filter := q.Filter().Map()
				require.Equal(t, "Toys", filter["category"])
				require.Equal(t, "Red", filter["colour"])
				require.Equal(t, "Nelson", filter["location"])
				require.Equal(t, bson.D{{Key: "$gte", Value: 10.0}, {Key: "$lte", Value: 99.5}}, filter["start_price"])
			},
		},
		{
			name:   "keyword_is_escaped",
			params: Params{Q: "a.b*"},
			validate: func(t *testing.T, q Query) {
				or := q.Filter().Map()["$or"].(bson.A)
				require.Len(t, or, 2)
				title := or[0].(bson.D).Map()["title"].(primitive.Regex)
				require.Equal(t, `a\.b\*`, title.Pattern)
				require.Equal(t, "i", title.Options)
			},
		},
		{
			name:   "ids",
			params: Params{IDs: id.Hex()},
			validate: func(t *testing.T, q Query) {
				require.Equal(t, []primitive.ObjectID{id}, q.IDs)
			},
		},
		{
			name:   "limit_at_max",
			params: Params{Limit: "100"},
			validate: func(t *testing.T, q Query) {
				require.Equal(t, int64(MaxLimit), q.Limit)
			},
		},
		{name: "limit_above_max", params: Params{Limit: "5000"}, expectedError: marketerrors.ErrValidation},
		{name: "bad_min_price", params: Params{MinPrice: "cheap"}, expectedError: marketerrors.ErrValidation},
		{name: "bad_limit", params: Params{Limit: "-3"}, expectedError: marketerrors.ErrValidation},
		{name: "bad_ids", params: Params{IDs: "123"}, expectedError: marketerrors.ErrValidation},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q, err := BuildAuctionQuery(tc.params)
			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			tc.validate(t, q)
		})
	}
}

func TestQuery_ApplyKeyword(t *testing.T) {
	t.Parallel()

	auctions := []models.Auction{
		newAuction("iPhone 12", "smart PHONE", 300, 1),
		newAuction("Headphones", "over-ear", 50, 2),
		newAuction("Desk", "oak desk, no phone", 80, 3),
		newAuction("Chair", "wooden", 20, 4),
	}

	q, err := BuildAuctionQuery(Params{Q: "phone"})
	require.NoError(t, err)
	require.Equal(t, []string{"iPhone 12", "Headphones", "Desk"}, titles(q.Apply(auctions)))

	// metacharacters are literal and never panic
	q, err = BuildAuctionQuery(Params{Q: "a.b*"})
	require.NoError(t, err)
	require.Empty(t, q.Apply(auctions))

	withLiteral := append(auctions, newAuction("Weird a.b* title", "", 1, 5))
	require.Equal(t, []string{"Weird a.b* title"}, titles(q.Apply(withLiteral)))
}

func TestQuery_ApplySorts(t *testing.T) {
	t.Parallel()

	cheapOld := newAuction("cheap old", "", 10, 10)
	dearNew := newAuction("dear new", "", 500, 1)
	middle := newAuction("middle", "", 100, 5)
	middle.ViewCount = 99
	auctions := []models.Auction{cheapOld, dearNew, middle}

	tests := []struct {
		sort     string
		expected []string
	}{
		{"latest", []string{"dear new", "middle", "cheap old"}},
		{"oldest", []string{"cheap old", "middle", "dear new"}},
		{"priceAsc", []string{"cheap old", "middle", "dear new"}},
		{"priceDesc", []string{"dear new", "middle", "cheap old"}},
		{"trending", []string{"middle", "cheap old", "dear new"}},
		{"bestmatch", []string{"dear new", "middle", "cheap old"}},
		{"", []string{"dear new", "middle", "cheap old"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run("sort_"+tc.sort, func(t *testing.T) {
			t.Parallel()

			q, err := BuildAuctionQuery(Params{Sort: tc.sort})
			require.NoError(t, err)
			require.Equal(t, tc.expected, titles(q.Apply(auctions)))
		})
	}
}

func TestQuery_BestMatch(t *testing.T) {
	t.Parallel()

	descOnlyNew := newAuction("Case", "fits any phone", 10, 1)
	titleOld := newAuction("Old phone", "", 10, 9)
	titleNew := newAuction("New Phone", "", 10, 2)
	none := newAuction("Lamp", "bright", 10, 0)

	q, err := BuildAuctionQuery(Params{Q: "phone", Sort: "bestmatch"})
	require.NoError(t, err)
	require.True(t, q.Scored())

	got := q.Apply([]models.Auction{descOnlyNew, titleOld, none, titleNew})
	require.Equal(t, []string{"New Phone", "Old phone", "Case"}, titles(got))
	require.Equal(t, 2, *got[0].Score)
	require.Equal(t, 1, *got[2].Score)

	pipeline := q.Pipeline()
	require.Len(t, pipeline, 4)
	require.Equal(t, "$match", pipeline[0][0].Key)
	require.Equal(t, "$addFields", pipeline[1][0].Key)
	require.Equal(t, bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: -1}}, pipeline[2][0].Value)
	require.Equal(t, int64(DefaultLimit), pipeline[3][0].Value)
}

func TestQuery_BestMatchRespectsFilters(t *testing.T) {
	t.Parallel()

	inRange := newAuction("phone stand", "", 15, 1)
	outOfRange := newAuction("phone", "", 500, 1)

	q, err := BuildAuctionQuery(Params{Q: "phone", Sort: "bestmatch", MaxPrice: "100"})
	require.NoError(t, err)
	require.Equal(t, []string{"phone stand"}, titles(q.Apply([]models.Auction{inRange, outOfRange})))
}

func TestKeywordsAndSimilarQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"Canon", "camera", "body"}, Keywords("Old red Canon camera body lens"))
	require.Equal(t, []string{"Vintage", "Canon", "AE-1?"}, Keywords("Vintage Canon AE-1? camera"))
	require.Empty(t, Keywords("a big red cat"))

	target := newAuction("Mountain bike (large)", "", 100, 1)
	similarByTitle := newAuction("Kids bike", "", 10, 2)
	similarByDesc := newAuction("Helmet", "for any MOUNTAIN ride", 10, 3)
	unrelated := newAuction("Kettle", "", 10, 4)

	q := SimilarQuery(target, DefaultSimilarLimit)
	require.Equal(t, []string{"Mountain", "bike", "(large)"}, q.AnyOf)

	got := q.Apply([]models.Auction{target, similarByTitle, similarByDesc, unrelated})
	require.Equal(t, []string{"Kids bike", "Helmet"}, titles(got))

	filter := q.Filter().Map()
	require.Equal(t, bson.D{{Key: "$ne", Value: target.ID}}, filter["_id"])
	require.Contains(t, filter, "$and")

	noKeywords := SimilarQuery(newAuction("A cat", "", 1, 1), DefaultSimilarLimit)
	require.True(t, noKeywords.Empty())
	require.Empty(t, noKeywords.Apply([]models.Auction{similarByTitle}))
}
