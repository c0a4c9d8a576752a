package echoapi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-client/core/analytics"
	"github.com/trezcool/masomo-client/core/balance"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/payment"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/receipt"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/user"
)

const codeTTL = 10 * time.Minute

type (
	account struct {
		profile    user.Profile
		schoolID   int
		schoolName string
	}

	pendingCode struct {
		code        string
		requestedAt time.Time
	}

	// Store keeps every sandbox record in memory. All access goes through mu.
	Store struct {
		mu  sync.RWMutex
		now func() time.Time

		pk        int
		accounts  map[int]*account
		emails    map[string]int // email -> account id
		tokens    map[string]int // token -> account id
		codes     map[string]pendingCode
		schools   map[int]string
		tasks     map[int]*ownedTask
		plans     []payment.PricingPlan
		methods   map[int][]payment.Method
		purchases map[int][]balance.Purchase
		txns      map[int][]balance.Transaction
		intents   map[string]*purchase.Status
		idemKeys  map[string]*purchase.Result
		receipts  map[int][]receipt.Receipt
		notifs    map[int][]notification.Notification
		activity  map[int][]analytics.Activity // by school id
	}

	ownedTask struct {
		owner int
		task.Task
	}
)

// NewStore returns a Store holding the default plan catalogue.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:       now,
		accounts:  make(map[int]*account),
		emails:    make(map[string]int),
		tokens:    make(map[string]int),
		codes:     make(map[string]pendingCode),
		schools:   make(map[int]string),
		tasks:     make(map[int]*ownedTask),
		plans:     defaultPlans(),
		methods:   make(map[int][]payment.Method),
		purchases: make(map[int][]balance.Purchase),
		txns:      make(map[int][]balance.Transaction),
		intents:   make(map[string]*purchase.Status),
		idemKeys:  make(map[string]*purchase.Result),
		receipts:  make(map[int][]receipt.Receipt),
		notifs:    make(map[int][]notification.Notification),
		activity:  make(map[int][]analytics.Activity),
	}
}

func defaultPlans() []payment.PricingPlan {
	return []payment.PricingPlan{
		{ID: 1, Name: "Starter", Description: "5 hours of tutoring", PlanType: payment.PlanPackage, HoursIncluded: 5, PriceEUR: 100, ValidityDays: null.IntFrom(90), IsActive: true},
		{ID: 2, Name: "Standard", Description: "10 hours of tutoring", PlanType: payment.PlanPackage, HoursIncluded: 10, PriceEUR: 180, ValidityDays: null.IntFrom(120), IsActive: true},
		{ID: 3, Name: "Monthly", Description: "8 hours every month", PlanType: payment.PlanSubscription, HoursIncluded: 8, PriceEUR: 150, IsActive: true},
		{ID: 4, Name: "Legacy", Description: "No longer sold", PlanType: payment.PlanPackage, HoursIncluded: 20, PriceEUR: 300, IsActive: false},
	}
}

// nextPK must be called with mu held.
func (s *Store) nextPK() int {
	s.pk++
	return s.pk
}

// AddUser registers an account and returns its profile. Students get a saved card.
func (s *Store) AddUser(name, email, role, phone, schoolName string) user.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(name, email, role, phone, schoolName)
}

func (s *Store) addUser(name, email, role, phone, schoolName string) user.Profile {
	now := s.now().UTC()
	acc := &account{profile: user.Profile{
		ID:         s.nextPK(),
		Email:      strings.ToLower(email),
		Name:       name,
		UserType:   role,
		IsActive:   true,
		Language:   "en",
		DateJoined: now,
	}}
	if phone != "" {
		acc.profile.PhoneNumber = null.StringFrom(phone)
	}
	if role == user.RoleSchoolOwner {
		acc.schoolID = s.nextPK()
		acc.schoolName = schoolName
		s.schools[acc.schoolID] = schoolName
	}
	s.accounts[acc.profile.ID] = acc
	s.emails[acc.profile.Email] = acc.profile.ID

	if role == user.RoleStudent {
		s.methods[acc.profile.ID] = []payment.Method{{
			ID:        "pm_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
			Type:      "card",
			Card:      &payment.Card{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: now.Year() + 3},
			IsDefault: true,
			CreatedAt: now,
		}}
	}
	s.record(acc, "user_registered", fmt.Sprintf("%s joined as %s", name, role))
	return acc.profile
}

// record appends to the activity feed of every school; must be called with mu held.
func (s *Store) record(actor *account, kind, description string) {
	act := analytics.Activity{
		ID:           uuid.NewString(),
		ActivityType: kind,
		Description:  description,
		Actor:        analytics.Actor{ID: actor.profile.ID, Name: actor.profile.Name, Role: actor.profile.UserType},
		Timestamp:    s.now().UTC(),
	}
	for id := range s.schools {
		s.activity[id] = append(s.activity[id], act)
	}
}

func (s *Store) accountByEmail(email string) (account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return account{}, false
	}
	return *s.accounts[id], true
}

// newCode stores a fresh 6 digit code for email. It fails with errThrottled when the
// previous code is younger than interval.
func (s *Store) newCode(email string, interval time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if prev, ok := s.codes[email]; ok && interval > 0 && now.Sub(prev.requestedAt) < interval {
		return "", errThrottled
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	s.codes[email] = pendingCode{code: code, requestedAt: now}
	return code, nil
}

// PendingCode returns the unused verification code sent to email.
func (s *Store) PendingCode(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pc, ok := s.codes[strings.ToLower(email)]
	return pc.code, ok
}

// consumeCode checks code and burns it on success.
func (s *Store) consumeCode(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.codes[email]
	if !ok || pc.code != code || s.now().Sub(pc.requestedAt) > codeTTL {
		return false
	}
	delete(s.codes, email)
	return true
}

func (s *Store) newToken(accountID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[token] = accountID
	return token
}

// accountByToken returns a copy of the account the token was issued to.
func (s *Store) accountByToken(token string) (account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	if !ok {
		return account{}, false
	}
	acc, ok := s.accounts[id]
	if !ok {
		return account{}, false
	}
	return *acc, true
}

func (s *Store) revokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Store) profile(id int) (user.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return user.Profile{}, false
	}
	return acc.profile, true
}

func (s *Store) updateProfile(id int, up user.UpdateProfile) user.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &s.accounts[id].profile
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.PhoneNumber != nil {
		p.PhoneNumber = null.NewString(*up.PhoneNumber, *up.PhoneNumber != "")
	}
	if up.Language != nil {
		p.Language = *up.Language
	}
	return *p
}

func (s *Store) users(role, search string) []user.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search = strings.ToLower(search)
	res := make([]user.Profile, 0, len(s.accounts))
	for _, acc := range s.accounts {
		p := acc.profile
		if role != "" && p.UserType != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Email), search) {
			continue
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// SchoolOf returns the school owned by userID, 0 when there is none.
func (s *Store) SchoolOf(userID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[userID]; ok {
		return acc.schoolID
	}
	return 0
}
