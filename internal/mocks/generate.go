package mocks

//go:generate mockery --name ReportRowStore --srcpkg github.com/ledgerline/reportsync/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name DocumentStore --srcpkg github.com/ledgerline/reportsync/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
