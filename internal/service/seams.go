package service

import (
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/store"
)

// 資料存取替換點，測試以記憶體實作覆寫
var (
	withTx = database.WithTx

	getUserByID        = store.GetUserByID
	getUserByLogin     = store.GetUserByLogin
	createUser         = store.CreateUser
	updateUserPassword = store.UpdateUserPassword
	setUserActive      = store.SetUserActive
	deleteUser         = store.DeleteUser
	listUsers          = store.ListUsers

	createShop = store.CreateShop
	getShop    = store.GetShop
	deleteShop = store.DeleteShop
	listShops  = store.ListShops

	addMembership     = store.AddMembership
	removeMembership  = store.RemoveMembership
	hasMembership     = store.HasMembership
	listUserShopIDs   = store.ListUserShopIDs
	listShopMemberIDs = store.ListShopMemberIDs
	firstUserShopID   = store.FirstUserShopID

	insertInvoice       = store.InsertInvoice
	insertItems         = store.InsertItems
	deleteItems         = store.DeleteItems
	lockInvoice         = store.LockInvoice
	updateInvoiceFields = store.UpdateInvoiceFields
	getInvoice          = store.GetInvoice
	deleteInvoice       = store.DeleteInvoice
	latestInvoiceID     = store.LatestInvoiceID
	listInvoices        = store.ListInvoices
	invoiceStats        = store.InvoiceStats
)
