package postgres

import (
	"context"

	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// donationRepository implements the domain.DonationRepository interface using GORM.
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository is the constructor for donationRepository.
func NewDonationRepository(db *gorm.DB) repository.DonationRepository {
	return &donationRepository{db: db}
}

// Create persists a new donation record in pending status.
func (repo *donationRepository) Create(ctx context.Context, donation *entity.Donation) error {
	donationM := fromDonationDomain(donation)

	if err := repo.db.WithContext(ctx).Create(donationM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("donation reference already exists")
		}
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid donation record")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create donation")
	}

	donation.ID = donationM.ID
	donation.CreatedAt = donationM.CreatedAt
	donation.UpdatedAt = donationM.UpdatedAt

	return nil
}

// FindByReference retrieves a donation by its unique reference.
func (repo *donationRepository) FindByReference(ctx context.Context, reference string) (*entity.Donation, error) {
	var donationM model.DonationModel
	if err := repo.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&donationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to find donation by reference")
	}

	return toDonationDomain(&donationM), nil
}

// RecordInitiation stores the provider transaction ID and merges the given
// keys into payment_info. The donation stays pending.
func (repo *donationRepository) RecordInitiation(ctx context.Context, reference, transactionID string, paymentInfo map[string]any) error {
	return repo.mergeUpdate(ctx, reference, map[string]any{"transaction_id": transactionID}, paymentInfo)
}

// MarkFailed moves a pending donation to failed with a normalized error
// message and merges the given keys into payment_info.
func (repo *donationRepository) MarkFailed(ctx context.Context, reference, errorMessage string, paymentInfo map[string]any) error {
	updates := map[string]any{
		"status":        string(entity.DonationStatusFailed),
		"error_message": errorMessage,
	}

	return repo.mergeUpdate(ctx, reference, updates, paymentInfo)
}

// mergeUpdate applies column updates to a pending donation, merging
// paymentInfo keys into the stored payment_info object.
func (repo *donationRepository) mergeUpdate(ctx context.Context, reference string, updates map[string]any, paymentInfo map[string]any) error {
	donationM, err := repo.lockByReference(ctx, reference)
	if err != nil {
		return err
	}

	if len(paymentInfo) > 0 {
		merged := model.JSONMap{}
		for k, v := range donationM.PaymentInfo {
			merged[k] = v
		}
		for k, v := range paymentInfo {
			merged[k] = v
		}
		updates["payment_info"] = merged
	}

	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("reference = ? AND status = ?", reference, string(entity.DonationStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update donation")
	}
	if result.RowsAffected == 0 {
		return repository.ErrDonationFinalized
	}

	return nil
}

// Finalize performs a compare-and-set transition from pending to the given
// terminal status. The first writer wins.
func (repo *donationRepository) Finalize(ctx context.Context, reference, transactionID string, status entity.DonationStatus, errorMessage string) error {
	updates := map[string]any{
		"status":        string(status),
		"error_message": errorMessage,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}

	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("reference = ? AND status = ?", reference, string(entity.DonationStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to finalize donation")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Lost the race or unknown reference: reload to tell the cases apart.
	current, err := repo.FindByReference(ctx, reference)
	if err != nil {
		return err
	}
	if current.Status == status {
		// Duplicate delivery of the same outcome is idempotent.
		return nil
	}

	return repository.ErrDonationFinalized
}

// ListRecent returns the most recent successful donations, newest first.
func (repo *donationRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Donation, error) {
	var donationModels []*model.DonationModel
	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(entity.DonationStatusSuccess)).
		Order("created_at DESC").
		Limit(limit).
		Find(&donationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list recent donations")
	}

	donations := make([]*entity.Donation, 0, len(donationModels))
	for _, donationM := range donationModels {
		donations = append(donations, toDonationDomain(donationM))
	}

	return donations, nil
}

// lockByReference loads the current row with a row lock so concurrent
// payment_info merges do not drop keys.
func (repo *donationRepository) lockByReference(ctx context.Context, reference string) (*model.DonationModel, error) {
	var donationM model.DonationModel
	if err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference = ?", reference).
		First(&donationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to load donation for update")
	}

	return &donationM, nil
}

// --- Mapper Functions ---

func toDonationDomain(data *model.DonationModel) *entity.Donation {
	if data == nil {
		return nil
	}

	transactionID := ""
	if data.TransactionID != nil {
		transactionID = *data.TransactionID
	}

	return &entity.Donation{
		ID:            data.ID,
		Email:         data.Email,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Reference:     data.Reference,
		Status:        entity.DonationStatus(data.Status),
		PaymentMethod: entity.PaymentMethod(data.PaymentMethod),
		TransactionID: transactionID,
		ErrorMessage:  data.ErrorMessage,
		PaymentInfo:   data.PaymentInfo,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromDonationDomain(data *entity.Donation) *model.DonationModel {
	if data == nil {
		return nil
	}

	var transactionID *string
	if data.TransactionID != "" {
		id := data.TransactionID
		transactionID = &id
	}

	return &model.DonationModel{
		ID:            data.ID,
		Email:         data.Email,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Reference:     data.Reference,
		Status:        string(data.Status),
		PaymentMethod: string(data.PaymentMethod),
		TransactionID: transactionID,
		ErrorMessage:  data.ErrorMessage,
		PaymentInfo:   model.JSONMap(data.PaymentInfo),
	}
}
