package search

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SortMode selects the ordering of auction listings
type SortMode string

const (
	SortLatest    SortMode = "latest"
	SortOldest    SortMode = "oldest"
	SortPriceAsc  SortMode = "priceAsc"
	SortPriceDesc SortMode = "priceDesc"
	SortTrending  SortMode = "trending"
	SortBestMatch SortMode = "bestmatch"
)

const (
	DefaultLimit        = 20
	DefaultSearchLimit  = 10
	DefaultSimilarLimit = 5
	MaxLimit            = 100

	titleScore       = 2
	descriptionScore = 1

	maxSimilarKeywords = 3
	minKeywordLength   = 4
)

// Params are the raw listing parameters as received over HTTP
type Params struct {
	Q        string `form:"q"`
	Category string `form:"category"`
	Location string `form:"location"`
	Colour   string `form:"colour"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Sort     string `form:"sort"`
	IDs      string `form:"ids"`
	Limit    string `form:"limit"`
}

// Query is a parsed auction listing request. It renders to a Mongo filter, sort
// and aggregation pipeline, and can also be evaluated directly against auctions.
type Query struct {
	Keyword  string
	Category string
	Location string
	Colour   string
	MinPrice *float64
	MaxPrice *float64
	IDs      []primitive.ObjectID
	Sort     SortMode
	Limit    int64

	// set by SimilarQuery
	ExcludeID *primitive.ObjectID
	AnyOf     []string
}

// EscapeRegex quotes every regex metacharacter so s matches literally.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}

// BuildAuctionQuery validates p and converts it into a Query.
func BuildAuctionQuery(p Params) (Query, error) {
	q := Query{
		Keyword:  strings.TrimSpace(p.Q),
		Category: p.Category,
		Location: p.Location,
		Colour:   p.Colour,
		Sort:     parseSort(p.Sort),
	}

	var err error
	if q.MinPrice, err = parsePrice("minPrice", p.MinPrice); err != nil {
		return Query{}, err
	}
	if q.MaxPrice, err = parsePrice("maxPrice", p.MaxPrice); err != nil {
		return Query{}, err
	}
	if p.IDs != "" {
		if q.IDs, err = models.ParseIDs("ids", p.IDs); err != nil {
			return Query{}, err
		}
	}
	if q.Limit, err = ParseLimit(p.Limit, DefaultLimit); err != nil {
		return Query{}, err
	}
	return q, nil
}

// ParseLimit parses a limit in [1, MaxLimit], falling back to def when raw is empty.
// Values above MaxLimit are rejected rather than truncated.
func ParseLimit(raw string, def int64) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", marketerrors.ErrInvalidInput)
	}
	if n > MaxLimit {
		return 0, fmt.Errorf("%w: limit must be at most %d", marketerrors.ErrInvalidInput, MaxLimit)
	}
	return n, nil
}

func parsePrice(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", marketerrors.ErrInvalidInput, field)
	}
	return &v, nil
}

func parseSort(raw string) SortMode {
	switch mode := SortMode(raw); mode {
	case SortLatest, SortOldest, SortPriceAsc, SortPriceDesc, SortTrending, SortBestMatch:
		return mode
	default:
		return SortLatest
	}
}

// Keywords returns up to three words longer than three characters from title.
func Keywords(title string) []string {
	words := lo.Filter(strings.Split(title, " "), func(w string, _ int) bool {
		return utf8.RuneCountInString(w) >= minKeywordLength
	})
	if len(words) > maxSimilarKeywords {
		words = words[:maxSimilarKeywords]
	}
	return words
}

// SimilarQuery matches auctions other than a whose title or description contains
// any keyword of a's title.
func SimilarQuery(a models.Auction, limit int64) Query {
	id := a.ID
	return Query{
		ExcludeID: &id,
		AnyOf:     Keywords(a.Title),
		Sort:      SortLatest,
		Limit:     limit,
	}
}

// Scored reports whether results carry a relevance score.
func (q Query) Scored() bool {
	return q.Sort == SortBestMatch && q.Keyword != ""
}

// Empty reports whether the query can never match, e.g. a similarity search
// on a title without usable keywords.
func (q Query) Empty() bool {
	return q.ExcludeID != nil && len(q.AnyOf) == 0
}

func textMatch(pattern string) bson.A {
	return bson.A{
		bson.D{{Key: "title", Value: primitive.Regex{Pattern: pattern, Options: "i"}}},
		bson.D{{Key: "description", Value: primitive.Regex{Pattern: pattern, Options: "i"}}},
	}
}

// Filter renders the Mongo match document.
func (q Query) Filter() bson.D {
	filter := bson.D{}
	if q.Keyword != "" {
		filter = append(filter, bson.E{Key: "$or", Value: textMatch(EscapeRegex(q.Keyword))})
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if q.Location != "" {
		filter = append(filter, bson.E{Key: "location", Value: q.Location})
	}
	if q.Colour != "" {
		filter = append(filter, bson.E{Key: "colour", Value: q.Colour})
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.D{}
		if q.MinPrice != nil {
			price = append(price, bson.E{Key: "$gte", Value: *q.MinPrice})
		}
		if q.MaxPrice != nil {
			price = append(price, bson.E{Key: "$lte", Value: *q.MaxPrice})
		}
		filter = append(filter, bson.E{Key: "start_price", Value: price})
	}
	if len(q.IDs) > 0 || q.ExcludeID != nil {
		id := bson.D{}
		if len(q.IDs) > 0 {
			id = append(id, bson.E{Key: "$in", Value: q.IDs})
		}
		if q.ExcludeID != nil {
			id = append(id, bson.E{Key: "$ne", Value: *q.ExcludeID})
		}
		filter = append(filter, bson.E{Key: "_id", Value: id})
	}
	if len(q.AnyOf) > 0 {
		anyOf := lo.Map(q.AnyOf, func(word string, _ int) any {
			return bson.D{{Key: "$or", Value: textMatch(EscapeRegex(word))}}
		})
		// wrapped so it cannot collide with the keyword $or
		filter = append(filter, bson.E{Key: "$and", Value: bson.A{bson.D{{Key: "$or", Value: bson.A(anyOf)}}}})
	}
	return filter
}

// SortSpec renders the Mongo sort document for unscored queries.
func (q Query) SortSpec() bson.D {
	switch q.Sort {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortPriceAsc:
		return bson.D{{Key: "start_price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "start_price", Value: -1}}
	case SortTrending:
		return bson.D{{Key: "view_count", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// Pipeline renders the best-match aggregation: title hits score 2, description-only
// hits 1, then score desc and newest first.
func (q Query) Pipeline() mongo.Pipeline {
	pattern := EscapeRegex(q.Keyword)
	regexMatch := func(field string) bson.D {
		return bson.D{{Key: "$regexMatch", Value: bson.D{
			{Key: "input", Value: "$" + field},
			{Key: "regex", Value: pattern},
			{Key: "options", Value: "i"},
		}}}
	}
	score := bson.D{{Key: "$cond", Value: bson.A{
		regexMatch("title"),
		titleScore,
		bson.D{{Key: "$cond", Value: bson.A{regexMatch("description"), descriptionScore, 0}}},
	}}}

	return mongo.Pipeline{
		{{Key: "$match", Value: q.Filter()}},
		{{Key: "$addFields", Value: bson.D{{Key: "score", Value: score}}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: q.Limit}},
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Matches evaluates the filter against a single auction.
func (q Query) Matches(a models.Auction) bool {
	if q.Keyword != "" && !containsFold(a.Title, q.Keyword) && !containsFold(a.Description, q.Keyword) {
		return false
	}
	if q.Category != "" && a.Category != q.Category {
		return false
	}
	if q.Location != "" && a.Location != q.Location {
		return false
	}
	if q.Colour != "" && a.Colour != q.Colour {
		return false
	}
	if q.MinPrice != nil && a.StartPrice < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && a.StartPrice > *q.MaxPrice {
		return false
	}
	if len(q.IDs) > 0 && !lo.Contains(q.IDs, a.ID) {
		return false
	}
	if q.ExcludeID != nil && a.ID == *q.ExcludeID {
		return false
	}
	if len(q.AnyOf) > 0 {
		hit := lo.ContainsBy(q.AnyOf, func(word string) bool {
			return containsFold(a.Title, word) || containsFold(a.Description, word)
		})
		if !hit {
			return false
		}
	}
	return true
}

// Score is the best-match relevance of a for the query keyword.
func (q Query) Score(a models.Auction) int {
	switch {
	case containsFold(a.Title, q.Keyword):
		return titleScore
	case containsFold(a.Description, q.Keyword):
		return descriptionScore
	default:
		return 0
	}
}

// Apply filters, orders and truncates auctions in memory with the same
// semantics as the Mongo rendering.
func (q Query) Apply(auctions []models.Auction) []models.Auction {
	if q.Empty() {
		return []models.Auction{}
	}
	out := lo.Filter(auctions, func(a models.Auction, _ int) bool { return q.Matches(a) })

	newer := func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	var less func(i, j int) bool
	switch {
	case q.Scored():
		for i := range out {
			score := q.Score(out[i])
			out[i].Score = &score
		}
		less = func(i, j int) bool {
			if *out[i].Score != *out[j].Score {
				return *out[i].Score > *out[j].Score
			}
			return newer(i, j)
		}
	case q.Sort == SortOldest:
		less = func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) }
	case q.Sort == SortPriceAsc:
		less = func(i, j int) bool { return out[i].StartPrice < out[j].StartPrice }
	case q.Sort == SortPriceDesc:
		less = func(i, j int) bool { return out[i].StartPrice > out[j].StartPrice }
	case q.Sort == SortTrending:
		less = func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount }
	default:
		less = newer
	}
	sort.SliceStable(out, less)

	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
