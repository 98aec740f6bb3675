package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDocumentRepo struct {
	docs          map[string]*domain.Document
	statusUpdates []string
	chunkParams   [][2]int
	chunkCounts   []int
	savedSummary  string
	savedVector   []float32
	cleared       []string
}

func newFakeDocumentRepo(docs ...*domain.Document) *fakeDocumentRepo {
	m := make(map[string]*domain.Document)
	for _, d := range docs {
		m[d.ID] = d
	}
	return &fakeDocumentRepo{docs: m}
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) Update(_ context.Context, doc *domain.Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", nil)
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document "+id, nil)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) List(_ context.Context) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeDocumentRepo) ListMissingSummaries(_ context.Context) ([]string, error) {
	var out []string
	for _, doc := range f.docs {
		if doc.Status == domain.StatusProcessed && doc.Summary == "" {
			out = append(out, doc.ID)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, notes string) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update status", nil)
	}
	doc.Status = status
	doc.Notes = notes
	f.statusUpdates = append(f.statusUpdates, string(status))
	return nil
}

func (f *fakeDocumentRepo) SetChunkParams(_ context.Context, id string, chunkSize, chunkOverlap int) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set chunk params", nil)
	}
	doc.ChunkSize = chunkSize
	doc.ChunkOverlap = chunkOverlap
	doc.ChunkCount = 0
	f.chunkParams = append(f.chunkParams, [2]int{chunkSize, chunkOverlap})
	return nil
}

func (f *fakeDocumentRepo) SetChunkCount(_ context.Context, id string, count int) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set chunk count", nil)
	}
	doc.ChunkCount = count
	f.chunkCounts = append(f.chunkCounts, count)
	return nil
}

func (f *fakeDocumentRepo) SaveSummary(_ context.Context, id, summary string, vector []float32) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "save summary", nil)
	}
	doc.Summary = summary
	doc.SummaryVector = vector
	f.savedSummary = summary
	f.savedVector = vector
	return nil
}

func (f *fakeDocumentRepo) ClearSummary(_ context.Context, id string) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "clear summary", nil)
	}
	doc.Summary = ""
	doc.SummaryVector = nil
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", nil)
	}
	delete(f.docs, id)
	return nil
}

type fakeChunkRepo struct {
	replaced    map[string][]domain.EmbeddingChunk
	searchOut   []domain.RetrievedChunk
	searchQuery ports.SearchQuery
	deletedDoc  string
	deletedAll  bool
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{replaced: make(map[string][]domain.EmbeddingChunk)}
}

func (f *fakeChunkRepo) ReplaceForDocument(_ context.Context, documentID string, chunks []domain.EmbeddingChunk) error {
	f.replaced[documentID] = chunks
	return nil
}

func (f *fakeChunkRepo) DeleteForDocument(_ context.Context, documentID string) error {
	f.deletedDoc = documentID
	return nil
}

func (f *fakeChunkRepo) DeleteAll(_ context.Context) error {
	f.deletedAll = true
	return nil
}

func (f *fakeChunkRepo) Search(_ context.Context, q ports.SearchQuery) ([]domain.RetrievedChunk, error) {
	f.searchQuery = q
	out := f.searchOut
	if q.TopK > 0 && len(out) > q.TopK {
		out = out[:q.TopK]
	}
	return out, nil
}

type fakeBotRepo struct {
	bots    map[string]*domain.Bot
	configs map[string]*domain.BotConfig
	rels    []*domain.DocumentBotRelationship
}

func newFakeBotRepo() *fakeBotRepo {
	return &fakeBotRepo{
		bots:    make(map[string]*domain.Bot),
		configs: make(map[string]*domain.BotConfig),
	}
}

func (f *fakeBotRepo) GetBot(_ context.Context, id string) (*domain.Bot, error) {
	bot, ok := f.bots[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get bot "+id, nil)
	}
	return bot, nil
}

func (f *fakeBotRepo) GetConfig(_ context.Context, id string) (*domain.BotConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get bot config "+id, nil)
	}
	return cfg, nil
}

func (f *fakeBotRepo) CreateBot(_ context.Context, bot *domain.Bot) error {
	f.bots[bot.ID] = bot
	return nil
}

func (f *fakeBotRepo) CreateRelationship(_ context.Context, rel *domain.DocumentBotRelationship) error {
	f.rels = append(f.rels, rel)
	return nil
}

type fakeConversationRepo struct {
	conversations map[string]*domain.Conversation
	messages      map[string][]domain.Message
	deleted       []string
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]domain.Message),
	}
}

func (f *fakeConversationRepo) GetForBot(_ context.Context, id, botID string) (*domain.Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok || conv.BotID != botID {
		return nil, domain.WrapError(domain.ErrNotFound, "get conversation "+id, nil)
	}
	return conv, nil
}

func (f *fakeConversationRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.conversations[id]
	return ok, nil
}

func (f *fakeConversationRepo) Create(_ context.Context, conv *domain.Conversation) error {
	f.conversations[conv.ID] = conv
	return nil
}

func (f *fakeConversationRepo) AppendMessage(_ context.Context, msg *domain.Message) error {
	if _, ok := f.conversations[msg.ConversationID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "append message", nil)
	}
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], *msg)
	return nil
}

func (f *fakeConversationRepo) ListRecent(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	msgs := f.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeConversationRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.conversations[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete conversation "+id, nil)
	}
	delete(f.conversations, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeConversationRepo) writeCount() int {
	n := len(f.conversations)
	for _, msgs := range f.messages {
		n += len(msgs)
	}
	return n
}

type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) Get(_ context.Context, names ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range names {
		if v, ok := f.values[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

// fakeProvider scripts Complete by prompt content and records every
// embedded text.
type fakeProvider struct {
	completeFn func(turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error)
	embedded   []string
	embedOut   []float32
	embedErr   error
}

func (f *fakeProvider) Complete(_ context.Context, turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error) {
	if f.completeFn != nil {
		return f.completeFn(turns, params)
	}
	return &domain.Completion{Role: domain.RoleAssistant, Content: "ok"}, nil
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.embedded = append(f.embedded, text)
	if f.embedOut != nil {
		return f.embedOut, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeGateway struct {
	provider ports.ChatProvider
}

func (f *fakeGateway) ForConfig(cfg *domain.BotConfig) (ports.ChatProvider, error) {
	if cfg == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "resolve provider", nil)
	}
	return f.provider, nil
}

type fakeReranker struct {
	results   []ports.RerankResult
	err       error
	gotQuery  string
	gotTexts  []string
	gotTopN   int
	gotAPIKey string
}

func (f *fakeReranker) Rerank(_ context.Context, apiKey, query string, candidates []string, topN int) ([]ports.RerankResult, error) {
	f.gotAPIKey = apiKey
	f.gotQuery = query
	f.gotTexts = candidates
	f.gotTopN = topN
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeLoader struct {
	blocks []string
	err    error
}

func (f *fakeLoader) Load(_ *domain.Document) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks, nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishIngestion(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeIngestion(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *fakeQueue) Close() {}

type fakeScraper struct {
	text string
	err  error
	got  string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (string, error) {
	f.got = url
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// wordSplitter splits on single spaces into fixed word-count chunks so
// tests control chunk counts exactly.
type wordSplitter struct {
	wordsPerChunk int
}

func (s wordSplitter) Split(text string, _, _ int) []string {
	words := strings.Fields(text)
	var out []string
	for len(words) > 0 {
		n := s.wordsPerChunk
		if n > len(words) {
			n = len(words)
		}
		out = append(out, strings.Join(words[:n], " "))
		words = words[n:]
	}
	return out
}

type fakeSplitterFactory struct {
	splitter ports.TextSplitter
	gotName  string
}

func (f *fakeSplitterFactory) ForName(name string) (ports.TextSplitter, error) {
	f.gotName = name
	return f.splitter, nil
}
