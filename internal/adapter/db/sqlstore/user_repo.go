package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "user-registry-service/internal/domain/user"
	"user-registry-service/internal/usecase/user"
)

const userSequence = "users"

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"` // Issued from id_sequences, never by the database
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// SequenceSchema holds the next id to issue for a named sequence.
// Ids come from here rather than from a serial column so that seeded rows
// and deletions behave the same on every driver.
type SequenceSchema struct {
	Name   string `gorm:"primaryKey"`
	NextID int64  `gorm:"not null"`
}

// TableName specifies the table name for the SequenceSchema model.
func (SequenceSchema) TableName() string {
	return "id_sequences"
}

// UserRepo implements user.Repository on top of GORM.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ user.Repository = (*UserRepo)(nil)

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// Migrate creates the tables. When seed is non-empty and the sequence does not
// exist yet, the seed rows are inserted and the sequence starts above them.
func (r *UserRepo) Migrate(ctx context.Context, seed []domain.User) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}, &SequenceSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SequenceSchema{}).Where("name = ?", userSequence).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to read sequence: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, u := range seed {
			if err := tx.Create(&UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}).Error; err != nil {
				return fmt.Errorf("failed to seed user %d: %w", u.ID, err)
			}
		}

		seq := SequenceSchema{Name: userSequence, NextID: domain.NextIDAfter(seed)}
		if err := tx.Create(&seq).Error; err != nil {
			return fmt.Errorf("failed to create sequence: %w", err)
		}

		r.log.Info("user store initialised", zap.Int("seeded", len(seed)), zap.Int64("next_id", seq.NextID))
		return nil
	})
}

// List returns all users ordered by id, which is insertion order.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = toDomain(m)
	}
	return users, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := toDomain(model)
	return &u, nil
}

// Create takes the next id from the sequence and inserts the user in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq SequenceSchema
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", userSequence).
			First(&seq).Error; err != nil {
			return fmt.Errorf("failed to read sequence: %w", err)
		}

		model = UserSchema{ID: seq.NextID, Name: u.Name, Email: u.Email}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		return tx.Model(&SequenceSchema{}).
			Where("name = ?", userSequence).
			Update("next_id", seq.NextID+1).Error
	})
	if err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	created := toDomain(model)
	return &created, nil
}

// Update applies the patch to the stored row.
func (r *UserRepo) Update(ctx context.Context, id int64, p domain.Patch) (*domain.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		if p.IsEmpty() {
			return nil
		}

		u := toDomain(model)
		u.Apply(p)
		model = UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}
		return tx.Save(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.Int64("id", id))
	u := toDomain(model)
	return &u, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

func toDomain(m UserSchema) domain.User {
	return domain.User{ID: m.ID, Name: m.Name, Email: m.Email}
}
