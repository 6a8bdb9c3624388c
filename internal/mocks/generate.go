package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PropProvider --dir ../usecase --output usecase --outpkg usecasemock --filename prop_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/ingestrun --output domain/ingestrun --outpkg ingestrunmock --filename repository_mock.go
