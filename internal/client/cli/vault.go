package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/passvault/internal/common"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first")
		return errNotLoggedIn
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	service, err := GetSimpleText(a.reader, "Enter service name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	credential, err := GetSimpleText(a.reader, "Enter login", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	password, err := GetPassword("Enter password to store", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	created, err := a.api.CreatePassword(ctx, a.token, service, credential, string(password))
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Saved %s (id %s)\n", created.Service, created.ID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	items, err := a.api.ListPasswords(ctx, a.token)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if len(items) == 0 {
		fmt.Println("Vault is empty")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%s  %s  %s\n", item.ID, item.Service, item.Credential)
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter entry id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	item, err := a.api.GetPassword(ctx, a.token, id)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Service:  %s\nLogin:    %s\nPassword: %s\n", item.Service, item.Credential, item.Password)
	return nil
}

func (a *App) Update(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter entry id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	service, err := GetSimpleText(a.reader, "Enter service name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	credential, err := GetSimpleText(a.reader, "Enter login", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	password, err := GetPassword("Enter password to store", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	updated, err := a.api.UpdatePassword(ctx, a.token, id, service, credential, string(password))
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Updated %s\n", updated.Service)
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter entry id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if err := a.api.DeletePassword(ctx, a.token, id); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}
