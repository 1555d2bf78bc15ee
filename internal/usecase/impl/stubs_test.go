package impl

import (
	"context"
	"strconv"
	"time"

	"parish/internal/domain/entity"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"

	"github.com/google/uuid"
)

// --- in-memory repositories ---

type fakeDonationRepo struct {
	donations map[string]*entity.Donation
	nextID    int64
	createErr error
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: map[string]*entity.Donation{}}
}

func (r *fakeDonationRepo) Create(_ context.Context, donation *entity.Donation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	donation.ID = r.nextID
	donation.CreatedAt = time.Now()
	copied := *donation
	r.donations[donation.Reference] = &copied

	return nil
}

func (r *fakeDonationRepo) FindByReference(_ context.Context, reference string) (*entity.Donation, error) {
	donation, ok := r.donations[reference]
	if !ok {
		return nil, repository.ErrDonationNotFound
	}
	copied := *donation

	return &copied, nil
}

func (r *fakeDonationRepo) RecordInitiation(_ context.Context, reference, transactionID string, paymentInfo map[string]any) error {
	donation, ok := r.donations[reference]
	if !ok {
		return repository.ErrDonationNotFound
	}
	if donation.Status != entity.DonationStatusPending {
		return repository.ErrDonationFinalized
	}
	donation.TransactionID = transactionID
	donation.PaymentInfo = mergeInfo(donation.PaymentInfo, paymentInfo)

	return nil
}

func (r *fakeDonationRepo) MarkFailed(_ context.Context, reference, errorMessage string, paymentInfo map[string]any) error {
	donation, ok := r.donations[reference]
	if !ok {
		return repository.ErrDonationNotFound
	}
	if donation.Status != entity.DonationStatusPending {
		return repository.ErrDonationFinalized
	}
	donation.Status = entity.DonationStatusFailed
	donation.ErrorMessage = errorMessage
	donation.PaymentInfo = mergeInfo(donation.PaymentInfo, paymentInfo)

	return nil
}

func (r *fakeDonationRepo) Finalize(_ context.Context, reference, transactionID string, status entity.DonationStatus, errorMessage string) error {
	donation, ok := r.donations[reference]
	if !ok {
		return repository.ErrDonationNotFound
	}
	if donation.Status != entity.DonationStatusPending {
		if donation.Status == status {
			return nil
		}

		return repository.ErrDonationFinalized
	}
	donation.Status = status
	donation.ErrorMessage = errorMessage
	if transactionID != "" {
		donation.TransactionID = transactionID
	}

	return nil
}

func (r *fakeDonationRepo) ListRecent(_ context.Context, limit int) ([]*entity.Donation, error) {
	var out []*entity.Donation
	for _, donation := range r.donations {
		if donation.Status == entity.DonationStatusSuccess {
			copied := *donation
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}

	return out, nil
}

func mergeInfo(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

type fakeUserRepo struct {
	byID       map[uuid.UUID]*entity.User
	byEmail    map[string]*entity.User
	byUsername map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       map[uuid.UUID]*entity.User{},
		byEmail:    map[string]*entity.User{},
		byUsername: map[string]*entity.User{},
	}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	r.byUsername[user.Username] = user

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	r.byUsername[user.Username] = user

	return nil
}

type providerKey struct {
	provider entity.ProviderType
	subject  string
}

type fakeAuthRepo struct {
	byProvider map[providerKey]*entity.Authentication
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{byProvider: map[providerKey]*entity.Authentication{}}
}

func (r *fakeAuthRepo) CreateAuthentication(_ context.Context, auth *entity.Authentication) error {
	if auth.ID == uuid.Nil {
		auth.ID = uuid.New()
	}
	auth.CreatedAt = time.Now()
	r.byProvider[providerKey{auth.Provider, auth.ProviderUserID}] = auth

	return nil
}

func (r *fakeAuthRepo) FindByProviderID(_ context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	auth, ok := r.byProvider[providerKey{provider, providerUserID}]
	if !ok {
		return nil, repository.ErrAuthNotFound
	}

	return auth, nil
}

func (r *fakeAuthRepo) FindByUserIDAndProvider(_ context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error) {
	for _, auth := range r.byProvider {
		if auth.UserID == userID && auth.Provider == provider {
			return auth, nil
		}
	}

	return nil, repository.ErrAuthNotFound
}

func (r *fakeAuthRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Authentication, error) {
	var out []*entity.Authentication
	for _, auth := range r.byProvider {
		if auth.UserID == userID {
			out = append(out, auth)
		}
	}

	return out, nil
}

type fakeRefreshRepo struct {
	byHash map[string]*entity.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byHash: map[string]*entity.RefreshToken{}}
}

func (r *fakeRefreshRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	r.byHash[token.TokenHash] = token

	return nil
}

func (r *fakeRefreshRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	token, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if token.IsExpired() {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

func (r *fakeRefreshRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	if _, ok := r.byHash[tokenHash]; !ok {
		return repository.ErrRefreshTokenNotFound
	}
	delete(r.byHash, tokenHash)

	return nil
}

func (r *fakeRefreshRepo) DeleteRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	for hash, token := range r.byHash {
		if token.UserID == userID {
			delete(r.byHash, hash)
		}
	}

	return nil
}

func (r *fakeRefreshRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	for hash, token := range r.byHash {
		if token.IsExpired() {
			delete(r.byHash, hash)
		}
	}

	return nil
}

// --- transaction plumbing ---

type fakeRepositoryFactory struct {
	users   *fakeUserRepo
	auths   *fakeAuthRepo
	tokens  *fakeRefreshRepo
	donates *fakeDonationRepo
}

func newFakeRepositoryFactory() *fakeRepositoryFactory {
	return &fakeRepositoryFactory{
		users:   newFakeUserRepo(),
		auths:   newFakeAuthRepo(),
		tokens:  newFakeRefreshRepo(),
		donates: newFakeDonationRepo(),
	}
}

func (f *fakeRepositoryFactory) NewUserRepository() repository.UserRepository {
	return f.users
}

func (f *fakeRepositoryFactory) NewAuthRepository() repository.AuthRepository {
	return f.auths
}

func (f *fakeRepositoryFactory) NewDonationRepository() repository.DonationRepository {
	return f.donates
}

func (f *fakeRepositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return f.tokens
}

type fakeTxManager struct {
	factory *fakeRepositoryFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- domain service stubs ---

type stubGateway struct {
	method entity.PaymentMethod
	result *service.InitiationResult
	err    error
	gotReq *service.InitiationRequest
}

func (g *stubGateway) Name() entity.PaymentMethod {
	return g.method
}

func (g *stubGateway) Initialize(_ context.Context, req *service.InitiationRequest) (*service.InitiationResult, error) {
	g.gotReq = req
	if g.err != nil {
		return nil, g.err
	}

	return g.result, nil
}

type stubGatewayRegistry struct {
	gateways map[entity.PaymentMethod]service.PaymentGateway
}

func (r *stubGatewayRegistry) Lookup(method entity.PaymentMethod) (service.PaymentGateway, bool) {
	gateway, ok := r.gateways[method]

	return gateway, ok
}

type stubTokenService struct {
	counter int
}

func (s *stubTokenService) GenerateTokens(userID uuid.UUID, isAdmin bool) (*service.TokenPair, error) {
	s.counter++
	suffix := strconv.Itoa(s.counter)

	return &service.TokenPair{
		AccessToken:  "access-" + userID.String() + "-" + suffix,
		RefreshToken: "refresh-" + suffix,
	}, nil
}

func (s *stubTokenService) ValidateAccessToken(string) (*service.TokenClaims, error) {
	return nil, nil
}

func (s *stubTokenService) HashToken(token string) string {
	return "hash:" + token
}

func (s *stubTokenService) RefreshTokenDuration() time.Duration {
	return time.Hour
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

type stubStateStore struct {
	issued string
	claims map[string]service.StateClaim
}

func newStubStateStore() *stubStateStore {
	return &stubStateStore{claims: map[string]service.StateClaim{}}
}

func (s *stubStateStore) Issue(claim service.StateClaim) (string, error) {
	s.issued = "state-" + strconv.Itoa(len(s.claims)+1)
	s.claims[s.issued] = claim

	return s.issued, nil
}

func (s *stubStateStore) Consume(state string) (service.StateClaim, bool) {
	claim, ok := s.claims[state]
	delete(s.claims, state)

	return claim, ok
}

type stubOAuthProvider struct {
	name       entity.ProviderType
	profile    *service.Profile
	exchangeErr error
	profileErr  error
}

func (p *stubOAuthProvider) Name() entity.ProviderType {
	return p.name
}

func (p *stubOAuthProvider) Label() string {
	return string(p.name)
}

func (p *stubOAuthProvider) AuthorizationURL(state, redirectURI string) string {
	return "https://provider.example/authorize?state=" + state + "&redirect_uri=" + redirectURI
}

func (p *stubOAuthProvider) Exchange(_ context.Context, code, _ string) (string, error) {
	if p.exchangeErr != nil {
		return "", p.exchangeErr
	}

	return "credential-for-" + code, nil
}

func (p *stubOAuthProvider) FetchProfile(_ context.Context, _ string) (*service.Profile, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}

	return p.profile, nil
}

type stubOAuthRegistry struct {
	providers map[string]service.OAuthProvider
}

func (r *stubOAuthRegistry) Lookup(name string) (service.OAuthProvider, bool) {
	provider, ok := r.providers[name]

	return provider, ok
}

type stubPublisher struct {
	events []*service.PrayerEvent
	err    error
}

func (p *stubPublisher) PublishPrayerEvent(_ context.Context, event *service.PrayerEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *stubPublisher) Close() error {
	return nil
}

type stubNotifier struct {
	events []*service.PrayerEvent
	err    error
}

func (n *stubNotifier) NotifyPrayer(_ context.Context, event *service.PrayerEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)

	return nil
}

type stubPrayerRepo struct {
	created []*entity.PrayerRequest
	err     error
}

func (r *stubPrayerRepo) Create(_ context.Context, prayer *entity.PrayerRequest) error {
	if r.err != nil {
		return r.err
	}
	if prayer.ID == uuid.Nil {
		prayer.ID = uuid.New()
	}
	prayer.CreatedAt = time.Now()
	r.created = append(r.created, prayer)

	return nil
}
