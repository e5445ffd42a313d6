package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/identity --output domain/identity --outpkg identitymock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RosterFetcher --dir ../domain/rostersync --output domain/rostersync --outpkg rostersyncmock --filename roster_fetcher_mock.go
