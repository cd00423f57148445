package transferservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/pkg/errorspkg"
)

func testUser(id int64, email, balance string) domain.User {
	return domain.User{
		ID:             id,
		Name:           "User " + email,
		Email:          email,
		Role:           domain.RoleUser,
		InitialBalance: balance,
		Balance:        balance,
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

func TestTransfer(t *testing.T) {
	// Pin the clock so the transfer date is deterministic. Cleanup runs
	// after all parallel subtests finish.
	realNow := timeNow
	timeNow = func() time.Time {
		return time.Date(2023, 5, 15, 23, 45, 0, 0, time.UTC)
	}

	t.Cleanup(func() { timeNow = realNow })

	testDate := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)

	sender := testUser(1, "sender@example.com", "1000.00")
	receiver := testUser(2, "receiver@example.com", "500.00")
	testAmount := "100.00"
	testDescription := "rent"

	testTxResult := domain.TransferTxResult{
		Transfer: domain.Transfer{
			SenderID:     sender.ID,
			ReceiverID:   receiver.ID,
			Amount:       testAmount,
			Description:  testDescription,
			Status:       domain.StatusCompleted,
			TransferDate: testDate,
		},
		SenderBalance:   "900.00",
		ReceiverBalance: "600.00",
	}

	type input struct {
		senderEmail string
		arg         domain.CreateTransferParams
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockRepo, userService *MockUserService)
		checkResponse func(res domain.TransferTxResult, err error)
	}{
		{
			name: "Invalid amount",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "!@#$",
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name: "Negative amount",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "-100.00",
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNegativeAmount.Error())
			},
		},
		{
			name: "Amount above the maximum",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "5000.01",
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAmountTooLarge.Error())
			},
		},
		{
			name: "Sender lookup error",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        testAmount,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(domain.User{}, errorspkg.ErrInternal)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name: "Receiver not found",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: "missing@example.com",
					Amount:        testAmount,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(sender, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq("missing@example.com")).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrReceiverNotFound.Error())
			},
		},
		{
			name: "Self transfer",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: sender.Email,
					Amount:        testAmount,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(2).
					Return(sender, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("0", nil)
				repo.EXPECT().ExistsOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(sender.ID),
					gomock.Eq(testAmount), gomock.Any(), gomock.Eq(testDate)).
					Times(1).
					Return(false, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrSelfTransfer.Error())
			},
		},
		{
			name: "Insufficient balance",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "1000.01",
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(sender, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(receiver.Email)).
					Times(1).
					Return(receiver, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("0", nil)
				repo.EXPECT().ExistsOnDate(gomock.Any(), gomock.Any(), gomock.Any(),
					gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(false, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, "insufficient balance")
			},
		},
		{
			name: "Daily limit exceeded",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "200.00",
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(sender, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(receiver.Email)).
					Times(1).
					Return(receiver, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("4900.00", nil)
				repo.EXPECT().ExistsOnDate(gomock.Any(), gomock.Any(), gomock.Any(),
					gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(false, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, "daily transfer limit exceeded")
			},
		},
		{
			name: "Duplicate transfer",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        testAmount,
					Description:   testDescription,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(sender, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(receiver.Email)).
					Times(1).
					Return(receiver, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("0", nil)
				repo.EXPECT().ExistsOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(receiver.ID),
					gomock.Eq(testAmount), gomock.Eq(testDescription), gomock.Eq(testDate)).
					Times(1).
					Return(true, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrDuplicateTransfer.Error())
			},
		},
		{
			name: "Sender internal balance error",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        testAmount,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				corrupted := sender
				corrupted.Balance = "invalid"
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(corrupted, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(receiver.Email)).
					Times(1).
					Return(receiver, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("0", nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name: "OK",
			input: input{
				senderEmail: sender.Email,
				arg: domain.CreateTransferParams{
					ReceiverEmail: receiver.Email,
					Amount:        "100",
					Description:   testDescription,
				},
			},
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(sender.Email)).
					Times(1).
					Return(sender, nil)
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(receiver.Email)).
					Times(1).
					Return(receiver, nil)
				repo.EXPECT().SumCompletedOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(testDate)).
					Times(1).
					Return("0", nil)
				repo.EXPECT().ExistsOnDate(gomock.Any(), gomock.Eq(sender.ID), gomock.Eq(receiver.ID),
					gomock.Eq(testAmount), gomock.Eq(testDescription), gomock.Eq(testDate)).
					Times(1).
					Return(false, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Eq(domain.TransferTxParams{
					SenderID:     sender.ID,
					ReceiverID:   receiver.ID,
					Amount:       testAmount,
					Description:  testDescription,
					TransferDate: testDate,
				})).
					Times(1).
					Return(testTxResult, nil)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transferRepo := NewMockRepo(ctrl)
			userService := NewMockUserService(ctrl)
			transferService := New(transferRepo, userService)

			tc.buildStubs(transferRepo, userService)

			tc.checkResponse(transferService.Transfer(
				context.Background(),
				tc.input.senderEmail,
				tc.input.arg))
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	actor := testUser(1, "sender@example.com", "1000.00")
	admin := testUser(3, "admin@example.com", "0.00")
	admin.Role = domain.RoleAdmin

	ownTransfer := domain.Transfer{ID: 10, SenderID: 1, ReceiverID: 2, Amount: "100.00"}
	foreignTransfer := domain.Transfer{ID: 11, SenderID: 2, ReceiverID: 4, Amount: "100.00"}

	testCases := []struct {
		name          string
		actorEmail    string
		id            int64
		buildStubs    func(repo *MockRepo, userService *MockUserService)
		checkResponse func(res domain.Transfer, err error)
	}{
		{
			name:       "OK own transfer",
			actorEmail: actor.Email,
			id:         ownTransfer.ID,
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(actor.Email)).
					Times(1).
					Return(actor, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(ownTransfer.ID)).
					Times(1).
					Return(ownTransfer, nil)
			},
			checkResponse: func(res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, ownTransfer, res)
			},
		},
		{
			name:       "Foreign transfer hidden from non-admin",
			actorEmail: actor.Email,
			id:         foreignTransfer.ID,
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(actor.Email)).
					Times(1).
					Return(actor, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(foreignTransfer.ID)).
					Times(1).
					Return(foreignTransfer, nil)
			},
			checkResponse: func(res domain.Transfer, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrTransferNotFound.Error())
			},
		},
		{
			name:       "Admin sees any transfer",
			actorEmail: admin.Email,
			id:         foreignTransfer.ID,
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(admin.Email)).
					Times(1).
					Return(admin, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(foreignTransfer.ID)).
					Times(1).
					Return(foreignTransfer, nil)
			},
			checkResponse: func(res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, foreignTransfer, res)
			},
		},
		{
			name:       "Not found",
			actorEmail: actor.Email,
			id:         999,
			buildStubs: func(repo *MockRepo, userService *MockUserService) {
				userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(actor.Email)).
					Times(1).
					Return(actor, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(int64(999))).
					Times(1).
					Return(domain.Transfer{}, domain.ErrTransferNotFound)
			},
			checkResponse: func(res domain.Transfer, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrTransferNotFound.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transferRepo := NewMockRepo(ctrl)
			userService := NewMockUserService(ctrl)
			transferService := New(transferRepo, userService)

			tc.buildStubs(transferRepo, userService)

			tc.checkResponse(transferService.Get(context.Background(), tc.actorEmail, tc.id))
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	actor := testUser(1, "sender@example.com", "1000.00")
	admin := testUser(3, "admin@example.com", "0.00")
	admin.Role = domain.RoleAdmin

	transfers := []domain.Transfer{
		{ID: 10, SenderID: 1, ReceiverID: 2, Amount: "100.00"},
	}

	t.Run("Non-admin is scoped to own transfers", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		transferRepo := NewMockRepo(ctrl)
		userService := NewMockUserService(ctrl)
		transferService := New(transferRepo, userService)

		userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(actor.Email)).
			Times(1).
			Return(actor, nil)
		transferRepo.EXPECT().List(gomock.Any(), gomock.Eq(domain.ListTransfersParams{
			UserID: actor.ID,
			Limit:  10,
			Offset: 0,
		})).
			Times(1).
			Return(transfers, nil)

		res, err := transferService.List(context.Background(), actor.Email, domain.ListTransfersParams{
			UserID: 42, // ignored for non-admins
			Limit:  10,
			Offset: 0,
		})
		require.NoError(t, err)
		require.Equal(t, transfers, res)
	})

	t.Run("Admin filter is passed through", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		transferRepo := NewMockRepo(ctrl)
		userService := NewMockUserService(ctrl)
		transferService := New(transferRepo, userService)

		arg := domain.ListTransfersParams{UserID: 42, Limit: 10}

		userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(admin.Email)).
			Times(1).
			Return(admin, nil)
		transferRepo.EXPECT().List(gomock.Any(), gomock.Eq(arg)).
			Times(1).
			Return(transfers, nil)

		res, err := transferService.List(context.Background(), admin.Email, arg)
		require.NoError(t, err)
		require.Equal(t, transfers, res)
	})
}

func TestListForExport(t *testing.T) {
	t.Parallel()

	admin := testUser(3, "admin@example.com", "0.00")
	admin.Role = domain.RoleAdmin

	dateFrom := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC)

	transfers := []domain.Transfer{
		{ID: 10, SenderID: 1, ReceiverID: 2, Amount: "100.00"},
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transferRepo := NewMockRepo(ctrl)
	userService := NewMockUserService(ctrl)
	transferService := New(transferRepo, userService)

	userService.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(admin.Email)).
		Times(1).
		Return(admin, nil)
	transferRepo.EXPECT().List(gomock.Any(), gomock.Eq(domain.ListTransfersParams{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})).
		Times(1).
		Return(transfers, nil)

	res, err := transferService.ListForExport(context.Background(), admin.Email, dateFrom, dateTo)
	require.NoError(t, err)
	require.Equal(t, transfers, res)
}
