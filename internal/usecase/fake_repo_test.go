package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"

	"github.com/google/uuid"
)

// fakeUserRepo is an in-memory UserRepository with the same conditional
// semantics as the SQL implementation.
type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	createErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.OTP != nil {
		v := *u.OTP
		c.OTP = &v
	}
	if u.OTPExpiry != nil {
		v := *u.OTPExpiry
		c.OTPExpiry = &v
	}
	if u.ResetPasswordToken != nil {
		v := *u.ResetPasswordToken
		c.ResetPasswordToken = &v
	}
	if u.ResetPasswordExpires != nil {
		v := *u.ResetPasswordExpires
		c.ResetPasswordExpires = &v
	}
	return &c
}

func (f *fakeUserRepo) get(id uuid.UUID) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

func (f *fakeUserRepo) put(u *entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = cloneUser(u)
}

func (f *fakeUserRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range f.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.emailTaken(user.Email, uuid.Nil) {
		return repository.ErrDuplicateEmail
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return f.get(id), nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByOTP(_ context.Context, otp int) (*entity.User, error) {
	// the otp column is int4; pgx refuses to encode anything wider
	if otp > math.MaxInt32 || otp < math.MinInt32 {
		return nil, fmt.Errorf("unable to encode %d into binary format for int4", otp)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *entity.User
	for _, u := range f.users {
		if u.OTP == nil || *u.OTP != otp {
			continue
		}
		if found == nil || *u.OTPExpiry > *found.OTPExpiry {
			found = u
		}
	}
	if found == nil {
		return nil, nil
	}
	return cloneUser(found), nil
}

func (f *fakeUserRepo) FindByResetToken(_ context.Context, token string, nowMillis int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token && *u.ResetPasswordExpires > nowMillis {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*entity.User
	for _, u := range f.users {
		if !u.IsDeleted {
			active = append(active, cloneUser(u))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	if offset >= len(active) {
		return []*entity.User{}, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], nil
}

func (f *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

// mutate applies fn to the stored record, or reports ErrUserNotFound.
func (f *fakeUserRepo) mutate(id uuid.UUID, fn func(u *entity.User) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	return fn(u)
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	return f.mutate(user.ID, func(u *entity.User) error {
		if f.emailTaken(user.Email, user.ID) {
			return repository.ErrDuplicateEmail
		}
		u.Profile = user.Profile
		u.Role = user.Role
		return nil
	})
}

func (f *fakeUserRepo) SetOTP(_ context.Context, id uuid.UUID, otp int, expiry int64) error {
	return f.mutate(id, func(u *entity.User) error {
		u.OTP, u.OTPExpiry = &otp, &expiry
		return nil
	})
}

func (f *fakeUserRepo) ConfirmEmail(_ context.Context, id uuid.UUID, otp int) (bool, error) {
	confirmed := false
	err := f.mutate(id, func(u *entity.User) error {
		if u.OTP == nil || *u.OTP != otp || u.IsEmailConfirmed {
			return nil
		}
		u.IsEmailConfirmed = true
		u.OTP, u.OTPExpiry = nil, nil
		confirmed = true
		return nil
	})
	if err == repository.ErrUserNotFound {
		return false, nil
	}
	return confirmed, err
}

func (f *fakeUserRepo) SetTemporaryPassword(_ context.Context, id uuid.UUID, hash, token string, expires int64) error {
	return f.mutate(id, func(u *entity.User) error {
		u.PasswordHash = hash
		u.ResetPasswordToken, u.ResetPasswordExpires = &token, &expires
		return nil
	})
}

func (f *fakeUserRepo) ResetPassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.mutate(id, func(u *entity.User) error {
		u.PasswordHash = hash
		u.OTP, u.OTPExpiry = nil, nil
		u.ResetPasswordToken, u.ResetPasswordExpires = nil, nil
		return nil
	})
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.mutate(id, func(u *entity.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error) {
	var out *entity.User
	err := f.mutate(id, func(u *entity.User) error {
		if patch.Email != nil {
			email := entity.NormalizeEmail(*patch.Email)
			if f.emailTaken(email, id) {
				return repository.ErrDuplicateEmail
			}
			u.Email = email
		}
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.PhoneNumber != nil {
			u.PhoneNumber = *patch.PhoneNumber
		}
		if patch.Address != nil {
			u.Address = *patch.Address
		}
		if patch.Bio != nil {
			u.Bio = *patch.Bio
		}
		if patch.IsDeleted != nil {
			u.IsDeleted = *patch.IsDeleted
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	deleted := true
	return f.UpdateFields(ctx, id, repository.UserPatch{IsDeleted: &deleted})
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	delete(f.users, id)
	return u, nil
}
